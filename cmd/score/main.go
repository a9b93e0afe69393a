package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/okian/matchscout/internal/domain/schema"
	"github.com/okian/matchscout/pkg/logger"
)

const (
	seasonFlag  = "season"
	schemaFlag  = "schema"
	outputFlag  = "output"
	strictFlag  = "strict"
	stdoutName  = "-"
	outputPerms = 0o644
)

func main() {
	var opts options

	app := &cli.App{
		Name:      "score",
		Usage:     "Score raw match entry files offline and write a ranked YAML report",
		ArgsUsage: "ENTRY_FILE... (JSON object or array; \"-\" reads stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        seasonFlag,
				Usage:       "Builtin season to score against",
				Value:       schema.SeasonRebuilt2026,
				Destination: &opts.season,
			},
			&cli.StringFlag{
				Name:        schemaFlag,
				Usage:       "YAML season definition; overrides --season",
				Destination: &opts.schemaFile,
			},
			&cli.StringFlag{
				Name:        outputFlag,
				Aliases:     []string{"o"},
				Usage:       "Where to write the YAML report. A file path or \"-\" for stdout.",
				Value:       stdoutName,
				Destination: &opts.output,
			},
			&cli.BoolFlag{
				Name:        strictFlag,
				Usage:       "Reject entries that set more than one toggle of an exclusion group",
				Destination: &opts.strict,
			},
		},
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() == 0 {
				return cli.Exit("at least one entry file is required", 2)
			}
			if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}

			rep, err := buildReport(cCtx.Context, opts, cCtx.Args().Slice(), os.Stdin)
			if err != nil {
				return err
			}
			if opts.output == stdoutName {
				return writeReport(os.Stdout, rep)
			}
			return writeReportFile(opts.output, rep)
		},
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
