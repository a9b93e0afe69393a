package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	service "github.com/okian/matchscout/internal/app"
	"github.com/okian/matchscout/internal/adapters/repository"
	"github.com/okian/matchscout/internal/domain/model"
)

// EntryDependencies defines what the entry handlers need.
type EntryDependencies interface {
	Submit(ctx context.Context, raw []byte) (service.SubmitResult, error)
	Score(ctx context.Context, raw []byte) (model.ScoredEntry, error)
	Get(ctx context.Context, id string) (repository.Ranked, error)
}

// EntriesHandler handles raw match entry submission, synchronous scoring and
// lookup of stored entries.
type EntriesHandler struct {
	deps EntryDependencies
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps EntryDependencies) *EntriesHandler {
	return &EntriesHandler{deps: deps}
}

// HandlePostEntry handles POST /entries. A new entry is accepted with 202,
// a resubmitted ID is acknowledged with 200.
func (h *EntriesHandler) HandlePostEntry(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeFailure(w, err)
		return
	}

	res, err := h.deps.Submit(r.Context(), body)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: res.ID, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: res.ID})
}

// HandleScore handles POST /score: the entry is aggregated and scored
// synchronously and nothing is stored.
func (h *EntriesHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeFailure(w, err)
		return
	}

	scored, err := h.deps.Score(r.Context(), body)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scored)
}

// HandleGetEntry handles GET /entries/{id}.
func (h *EntriesHandler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing id", ErrBadRequest))
		return
	}

	ranked, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrBadRequest)
	}
	return body, nil
}
