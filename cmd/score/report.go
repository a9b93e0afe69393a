package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/okian/matchscout/internal/adapters/repository"
	service "github.com/okian/matchscout/internal/app"
	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/pkg/logger"
)

type options struct {
	season     string
	schemaFile string
	output     string
	strict     bool
}

// Report is the YAML document written by the score command.
type Report struct {
	Season   string        `yaml:"season"`
	Entries  []ReportEntry `yaml:"entries"`
	Rejected []Rejection   `yaml:"rejected,omitempty"`
	Summary  Summary       `yaml:"summary"`
}

// ReportEntry is one scored entry with its rank among the inputs.
type ReportEntry struct {
	Rank          int               `yaml:"rank"`
	ID            string            `yaml:"id"`
	Points        model.Points      `yaml:"points"`
	StartPosition *int              `yaml:"startPosition,omitempty"`
	Violations    []model.Violation `yaml:"violations,omitempty"`
}

// Rejection records an entry that could not be scored.
type Rejection struct {
	Source string `yaml:"source"`
	Error  string `yaml:"error"`
}

// Summary aggregates the scored entries.
type Summary struct {
	Scored      int     `yaml:"scored"`
	Rejected    int     `yaml:"rejected"`
	MeanAuto    float64 `yaml:"meanAuto"`
	MeanTeleop  float64 `yaml:"meanTeleop"`
	MeanEndgame float64 `yaml:"meanEndgame"`
	MeanTotal   float64 `yaml:"meanTotal"`
	BestTotal   int     `yaml:"bestTotal"`
}

// buildReport scores every entry found in paths and ranks them by total.
// Entries without an id are named after their file and position.
func buildReport(ctx context.Context, opts options, paths []string, stdin io.Reader) (*Report, error) {
	s, err := service.ResolveSchema(ctx, opts.season, opts.schemaFile)
	if err != nil {
		return nil, err
	}
	svc := service.New(service.WithSchema(s), service.WithStrictExclusivity(opts.strict))
	log := logger.Get().Named("score")

	store := repository.NewTreapStore(repository.WithCapacityHint(len(paths)))
	defer store.Close()

	rep := &Report{Season: s.Name()}
	for _, path := range paths {
		raws, err := readEntries(path, stdin)
		if err != nil {
			return nil, err
		}
		for i, raw := range raws {
			source := path + "#" + strconv.Itoa(i)
			scored, err := svc.Score(ctx, raw)
			if err != nil {
				log.Warn(ctx, "entry rejected", logger.String("source", source), logger.Error(err))
				rep.Rejected = append(rep.Rejected, Rejection{Source: source, Error: err.Error()})
				continue
			}
			if scored.ID == "" {
				scored.ID = source
			}
			if err := store.Put(ctx, scored); err != nil {
				return nil, fmt.Errorf("rank %s: %w", source, err)
			}
		}
	}

	n, err := store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		ranked, err := store.TopN(ctx, n)
		if err != nil {
			return nil, err
		}
		for _, r := range ranked {
			rep.Entries = append(rep.Entries, ReportEntry{
				Rank:          r.Rank,
				ID:            r.Entry.ID,
				Points:        r.Entry.Points,
				StartPosition: r.Entry.Record.StartPosition,
				Violations:    r.Entry.Violations,
			})
		}
	}
	rep.Summary = summarize(rep)
	return rep, nil
}

// readEntries returns the raw JSON of each entry in path. A file may hold a
// single entry object or an array of them.
func readEntries(path string, stdin io.Reader) ([]json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == stdoutName {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return raws, nil
	}
	return []json.RawMessage{data}, nil
}

func summarize(rep *Report) Summary {
	sum := Summary{Scored: len(rep.Entries), Rejected: len(rep.Rejected)}
	if sum.Scored == 0 {
		return sum
	}
	var auto, teleop, endgame, total int
	for _, e := range rep.Entries {
		auto += e.Points.Auto
		teleop += e.Points.Teleop
		endgame += e.Points.Endgame
		total += e.Points.Total
	}
	n := float64(sum.Scored)
	sum.MeanAuto = float64(auto) / n
	sum.MeanTeleop = float64(teleop) / n
	sum.MeanEndgame = float64(endgame) / n
	sum.MeanTotal = float64(total) / n
	sum.BestTotal = rep.Entries[0].Points.Total
	return sum
}

func writeReport(w io.Writer, rep *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encoding to YAML failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding to YAML failed on close: %w", err)
	}
	return nil
}

// writeReportFile writes rep to path. A failure to flush the file on close is
// reported like a write failure.
func writeReportFile(path string, rep *Report) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, outputPerms)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return writeReport(f, rep)
}
