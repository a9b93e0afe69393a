// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/matchscout/internal/app"
	"github.com/okian/matchscout/internal/adapters/repository"
	"github.com/okian/matchscout/internal/domain/model"
)

const (
	defaultMaxLimit = 100
	maxBodyBytes    = 1 << 20
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	EntryDependencies
	LeaderboardDependencies
	SchemaProvider
	StatsProvider
}

// Server wires HTTP routes for the scouting API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	entriesHandler     *EntriesHandler
	leaderboardHandler *LeaderboardHandler
	schemaHandler      *SchemaHandler
}

// NewServer creates a new API server with all handlers. maxLimit bounds
// GET /leaderboard; values below one fall back to 100.
func NewServer(deps Dependencies, maxLimit int) *Server {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		entriesHandler:     NewEntriesHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		schemaHandler:      NewSchemaHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /schema", MetricsMiddleware(s.schemaHandler.HandleGetSchema, "schema"))
	mux.HandleFunc("POST /entries", MetricsMiddleware(s.entriesHandler.HandlePostEntry, "entries"))
	mux.HandleFunc("GET /entries/{id}", MetricsMiddleware(s.entriesHandler.HandleGetEntry, "entry"))
	mux.HandleFunc("POST /score", MetricsMiddleware(s.entriesHandler.HandleScore, "score"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps domain and service errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidEntry), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_entry"
	case errors.Is(err, ErrLimitExceeded), errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "invalid_limit"
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, service.ErrExclusivity):
		return http.StatusUnprocessableEntity, "exclusivity_violation"
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, repository.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
