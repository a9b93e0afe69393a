// Package repository persists scored match entries and ranks them by total
// points.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/matchscout/internal/domain/model"
)

// Ranked is a stored entry with its leaderboard position. Entries with equal
// totals share a rank and the next distinct total skips accordingly (1, 1, 3).
type Ranked struct {
	Rank  int               `json:"rank"`
	Entry model.ScoredEntry `json:"entry"`
}

// Store provides read/write access to scored entries.
type Store interface {
	// Put stores e as-is, replacing any entry with the same ID.
	Put(ctx context.Context, e model.ScoredEntry) error

	// Get returns the entry with id and its current rank, or ErrNotFound.
	Get(ctx context.Context, id string) (Ranked, error)

	// TopN returns up to n entries ordered by total points desc, then ID asc.
	TopN(ctx context.Context, n int) ([]Ranked, error)

	Count(ctx context.Context) (int, error)

	Close() error
}

// Store drivers accepted by config.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

func checkEntry(e model.ScoredEntry) error { //nolint:gocritic // hugeParam: value semantics
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	}
	return nil
}

// assignRanksWithTies sets competition ranks on entries already sorted by
// total desc. first is the rank of entries[0]; entries tied with it share it.
func assignRanksWithTies(entries []Ranked, first int) {
	for i := range entries {
		switch {
		case i == 0:
			entries[i].Rank = first
		case entries[i].Entry.Points.Total == entries[i-1].Entry.Points.Total:
			entries[i].Rank = entries[i-1].Rank
		default:
			entries[i].Rank = first + i
		}
	}
}
