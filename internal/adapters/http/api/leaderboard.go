package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/matchscout/internal/adapters/repository"
)

const defaultLeaderboardLimit = 10

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	TopN(ctx context.Context, n int) ([]repository.Ranked, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests. Without a
// limit the top 10 entries are returned.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := min(defaultLeaderboardLimit, h.maxLimit)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeFailure(w, fmt.Errorf("%w: %q", repository.ErrInvalidLimit, limitStr))
			return
		}
		if v > h.maxLimit {
			writeFailure(w, fmt.Errorf("%w: %d > %d", ErrLimitExceeded, v, h.maxLimit))
			return
		}
		n = v
	}

	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if entries == nil {
		entries = []repository.Ranked{}
	}
	writeJSON(w, http.StatusOK, entries)
}
