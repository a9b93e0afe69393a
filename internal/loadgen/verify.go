package loadgen

import (
	"errors"
	"fmt"

	"github.com/okian/matchscout/internal/adapters/repository"
)

// ErrInconsistentLeaderboard is returned when a leaderboard is unsorted or
// its ranks do not follow from the totals.
var ErrInconsistentLeaderboard = errors.New("inconsistent leaderboard")

// VerifyLeaderboard checks that entries are ordered by total desc then ID asc,
// that the first entry is rank 1, and that ties share a rank while the next
// distinct total takes its position (1, 1, 3).
func VerifyLeaderboard(entries []repository.Ranked) error {
	for i, cur := range entries {
		if i == 0 {
			if cur.Rank != 1 {
				return fmt.Errorf("%w: first entry has rank %d", ErrInconsistentLeaderboard, cur.Rank)
			}
			continue
		}
		prev := entries[i-1]
		pt, ct := prev.Entry.Points.Total, cur.Entry.Points.Total
		switch {
		case ct > pt:
			return fmt.Errorf("%w: entry %d (%d) outscores entry %d (%d)", ErrInconsistentLeaderboard, i, ct, i-1, pt)
		case ct == pt && cur.Entry.ID < prev.Entry.ID:
			return fmt.Errorf("%w: tied entries %d and %d out of id order", ErrInconsistentLeaderboard, i-1, i)
		case ct == pt && cur.Rank != prev.Rank:
			return fmt.Errorf("%w: tied entries %d and %d have ranks %d and %d", ErrInconsistentLeaderboard, i-1, i, prev.Rank, cur.Rank)
		case ct < pt && cur.Rank != i+1:
			return fmt.Errorf("%w: entry %d has rank %d, want %d", ErrInconsistentLeaderboard, i, cur.Rank, i+1)
		}
	}
	return nil
}
