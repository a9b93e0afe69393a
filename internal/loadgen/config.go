// Package loadgen drives a running matchscout service with generated match
// entries and checks that the leaderboard it builds is consistent.
package loadgen

import (
	"runtime"
	"time"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL       string        // Base URL of the service
	NumEntries    int           // Number of entries to generate
	TopN          int           // Number of leaderboard entries to fetch and verify
	Workers       int           // Number of concurrent submitters
	Timeout       time.Duration // HTTP request timeout
	SettleTimeout time.Duration // How long to wait for the service to store every entry
	Seed          uint64        // Generator seed; zero picks one from the clock
	OutputFile    string        // When set, generated entries are written here as JSON
}

// DefaultConfig returns the settings used by cmd/entry-load.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:9080",
		NumEntries:    1000,
		TopN:          50,
		Workers:       runtime.NumCPU() * 2,
		Timeout:       10 * time.Second,
		SettleTimeout: 30 * time.Second,
	}
}

// Stats holds run statistics.
type Stats struct {
	Generated          int
	Submitted          int
	Accepted           int
	Duplicate          int
	Failed             int
	Stored             int
	LeaderboardEntries int
	Duration           time.Duration
}
