package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/matchscout/pkg/logger"
)

const (
	settlePollInterval = 100 * time.Millisecond
	outputFilePerm     = 0o600
)

// Run generates entries, submits them concurrently, waits until the service
// has stored them and verifies the leaderboard.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	log := logger.Get().Named("loadgen")
	start := time.Now()
	stats := &Stats{}

	log.Info(ctx, "starting entry load",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("entries", cfg.NumEntries),
		logger.Int("workers", cfg.Workers),
		logger.Int("topN", cfg.TopN),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	before, err := c.storedEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}

	entries := NewGenerator(cfg.Seed).Generate(cfg.NumEntries)
	stats.Generated = len(entries)
	if cfg.OutputFile != "" {
		if err := saveEntries(cfg.OutputFile, entries); err != nil {
			log.Warn(ctx, "failed to save entries", logger.Error(err))
		}
	}

	submit(ctx, c, cfg.Workers, entries, stats)
	log.Info(ctx, "entries submitted",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
	)

	stored, err := waitStored(ctx, c, before+stats.Accepted, cfg.SettleTimeout)
	stats.Stored = stored - before
	if err != nil {
		return stats, err
	}

	top, err := c.leaderboard(ctx, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(top)
	if err := VerifyLeaderboard(top); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "entry load completed",
		logger.Int("stored", stats.Stored),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("entriesPerSecond", perSecond),
	)
	return stats, nil
}

func submit(ctx context.Context, c *client, workers int, entries []RawEntry, stats *Stats) {
	var accepted, duplicate, failed atomic.Int64
	if workers < 1 {
		workers = 1
	}

	ch := make(chan RawEntry, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range ch {
				switch c.submit(ctx, e) {
				case resultAccepted:
					accepted.Add(1)
				case resultDuplicate:
					duplicate.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, e := range entries {
			select {
			case <-ctx.Done():
				return
			case ch <- e:
			}
		}
	}()
	wg.Wait()

	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())
	stats.Submitted = stats.Accepted + stats.Duplicate + stats.Failed
}

// waitStored polls /stats until want entries are stored or timeout passes.
func waitStored(ctx context.Context, c *client, want int, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(settlePollInterval)
	defer ticker.Stop()

	var got int
	for {
		n, err := c.storedEntries(ctx)
		if err == nil {
			got = n
			if got >= want {
				return got, nil
			}
		}
		select {
		case <-ctx.Done():
			return got, fmt.Errorf("stored %d of %d entries before timeout: %w", got, want, ctx.Err())
		case <-ticker.C:
		}
	}
}

func saveEntries(path string, entries []RawEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}
	if err := os.WriteFile(path, data, outputFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
