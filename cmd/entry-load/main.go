package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/okian/matchscout/internal/loadgen"
	"github.com/okian/matchscout/pkg/logger"
)

func main() {
	cfg := loadgen.DefaultConfig()
	var verbose bool

	app := &cli.App{
		Name:  "entry-load",
		Usage: "Submit generated match entries to a running matchscout service and verify the leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "Base URL of the service", Value: cfg.BaseURL, Destination: &cfg.BaseURL},
			&cli.IntFlag{Name: "entries", Aliases: []string{"n"}, Usage: "Number of entries to generate and submit", Value: cfg.NumEntries, Destination: &cfg.NumEntries},
			&cli.IntFlag{Name: "top", Usage: "Number of leaderboard entries to fetch and verify", Value: cfg.TopN, Destination: &cfg.TopN},
			&cli.IntFlag{Name: "workers", Usage: "Number of concurrent submitters", Value: cfg.Workers, Destination: &cfg.Workers},
			&cli.DurationFlag{Name: "timeout", Usage: "HTTP request timeout", Value: cfg.Timeout, Destination: &cfg.Timeout},
			&cli.DurationFlag{Name: "settle", Usage: "How long to wait for every entry to be stored", Value: cfg.SettleTimeout, Destination: &cfg.SettleTimeout},
			&cli.Uint64Flag{Name: "seed", Usage: "Generator seed (0 picks one from the clock)", Destination: &cfg.Seed},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write generated entries to this JSON file", Destination: &cfg.OutputFile},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging", Destination: &verbose},
		},
		Action: func(cCtx *cli.Context) error {
			if err := logger.Init(); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			if verbose {
				_ = logger.SetLevelString("debug")
			}
			_, err := loadgen.Run(cCtx.Context, cfg)
			return err
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "entry load failed:", err)
		stop()
		os.Exit(1)
	}
}
