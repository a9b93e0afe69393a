// Package service wires the scouting engines to the queue, the worker pool and
// the store, and provides the operations the HTTP API and the CLIs need.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/matchscout/internal/adapters/mq/queue"
	workerpool "github.com/okian/matchscout/internal/adapters/mq/worker"
	"github.com/okian/matchscout/internal/adapters/repository"
	"github.com/okian/matchscout/internal/domain/aggregate"
	"github.com/okian/matchscout/internal/domain/dedupe"
	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/internal/domain/schema"
	"github.com/okian/matchscout/internal/domain/scoring"
	"github.com/okian/matchscout/internal/domain/validate"
	"github.com/okian/matchscout/pkg/logger"
	"github.com/okian/matchscout/pkg/metrics"
)

const (
	defaultQueueSize  = 10000
	defaultDedupeSize = 50000
)

// Service implements the API dependencies for match scouting.
type Service struct {
	mu sync.RWMutex

	// Engines, immutable after New.
	schema     *schema.Schema
	aggregator *aggregate.Aggregator
	checker    *validate.Checker
	engine     *scoring.Engine

	// Components created by Start.
	store   repository.Store
	deduper dedupe.Deduper
	queue   eventqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	storeDriver string
	storePath   string
	strict      bool

	started bool
	logger  logger.Logger
}

// SubmitResult describes an accepted submission.
type SubmitResult struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// Stats is a snapshot of the service for monitoring.
type Stats struct {
	Started           bool   `json:"started"`
	Season            string `json:"season"`
	StoreDriver       string `json:"storeDriver"`
	StrictExclusivity bool   `json:"strictExclusivity"`
	WorkerCount       int    `json:"workerCount"`
	QueueSize         int    `json:"queueSize"`
	QueueLength       int    `json:"queueLength"`
	DedupeSize        int    `json:"dedupeSize"`
	SeenIDs           int64  `json:"seenIds"`
	StoredEntries     int    `json:"storedEntries"`
	Processed         int64  `json:"processed"`
}

// New constructs a Service. Without WithSchema it scores the rebuilt-2026
// season.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		storeDriver: repository.DriverMemory,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.schema == nil {
		s.schema = schema.MustNew(schema.Rebuilt2026())
	}
	s.aggregator = aggregate.New(s.schema)
	s.checker = validate.New(s.schema)
	s.engine = scoring.New(s.schema)
	return s
}

// ResolveSchema returns the schema loaded from schemaFile when it is set, or
// the builtin season with the given name otherwise.
func ResolveSchema(ctx context.Context, season, schemaFile string) (*schema.Schema, error) {
	if schemaFile != "" {
		return schema.LoadFile(ctx, schemaFile)
	}
	return schema.Builtin().Lookup(season)
}

// Schema returns the season schema in use.
func (s *Service) Schema() *schema.Schema { return s.schema }

// Start initializes and starts the service components. Workers outlive ctx;
// they stop on Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	store, err := openStore(s.storeDriver, s.storePath)
	if err != nil {
		return err
	}

	s.store = store
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.store)
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "scouting service started",
		logger.String("season", s.schema.Name()),
		logger.String("store", s.storeDriver),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Bool("strictExclusivity", s.strict),
	)
	return nil
}

func openStore(driver, path string) (repository.Store, error) {
	switch driver {
	case repository.DriverMemory:
		return repository.NewTreapStore(), nil
	case repository.DriverSQLite:
		return repository.OpenSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, driver)
	}
}

// Stop drains queued submissions and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping scouting service...")

	var firstErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("shutdown workers: %w", err)
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close store: %w", err)
	}

	s.started = false
	s.logger.Info(ctx, "scouting service stopped", logger.Int("processed", int(s.pool.Processed())))
	return firstErr
}

// Evaluate aggregates, checks and scores a submission. It implements the
// worker pool's Evaluator.
func (s *Service) Evaluate(ctx context.Context, sub model.Submission) (model.ScoredEntry, error) { //nolint:gocritic // hugeParam: value semantics
	if err := ctx.Err(); err != nil {
		return model.ScoredEntry{}, err
	}
	start := time.Now()

	rec := s.aggregator.Aggregate(sub.Entry)
	violations, err := s.checkExclusivity(rec)
	if err != nil {
		return model.ScoredEntry{}, err
	}
	pts := s.engine.Score(rec)

	metrics.RecordEntryScored(pts.Auto, pts.Teleop, pts.Endgame, pts.Total)
	metrics.RecordEvaluationLatency(float64(time.Since(start).Microseconds()) / 1000)

	return model.ScoredEntry{
		ID:         sub.ID,
		Season:     s.schema.Name(),
		Record:     rec,
		Points:     pts,
		Violations: violations,
		ScoredAt:   time.Now().UTC(),
	}, nil
}

// checkExclusivity reports violations and, in strict mode, turns any into
// ErrExclusivity.
func (s *Service) checkExclusivity(rec model.Record) ([]model.Violation, error) {
	violations := s.checker.Check(rec)
	for _, v := range violations {
		metrics.RecordExclusivityViolation(string(v.Phase), v.Group)
	}
	if s.strict && len(violations) > 0 {
		return violations, fmt.Errorf("%w: %s", ErrExclusivity, describe(violations))
	}
	return violations, nil
}

func describe(violations []model.Violation) string {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = fmt.Sprintf("%s/%s [%s]", v.Phase, v.Group, strings.Join(v.Keys, ","))
	}
	return strings.Join(parts, "; ")
}

// Score evaluates a raw entry synchronously without storing it.
func (s *Service) Score(ctx context.Context, raw []byte) (model.ScoredEntry, error) {
	sub, err := s.parse(raw)
	if err != nil {
		return model.ScoredEntry{}, err
	}
	scored, err := s.Evaluate(ctx, sub)
	if errors.Is(err, ErrExclusivity) {
		metrics.RecordEntryRejected("exclusivity")
	}
	if err != nil {
		return model.ScoredEntry{}, err
	}
	return scored, nil
}

// Submit parses a raw entry and queues it for scoring. The entry's "id" field
// names it; a UUID is assigned when absent. An ID seen before is reported as a
// duplicate and not queued again.
func (s *Service) Submit(ctx context.Context, raw []byte) (SubmitResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return SubmitResult{}, ErrNotStarted
	}

	sub, err := s.parse(raw)
	if err != nil {
		return SubmitResult{}, err
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	if s.strict {
		if _, err := s.checkExclusivity(s.aggregator.Aggregate(sub.Entry)); err != nil {
			metrics.RecordEntryRejected("exclusivity")
			return SubmitResult{ID: sub.ID}, err
		}
	}

	if s.deduper.SeenAndRecord(ctx, sub.ID) {
		metrics.RecordEntryDuplicate()
		s.logger.Debug(ctx, "duplicate entry", logger.String("entry_id", sub.ID))
		return SubmitResult{ID: sub.ID, Duplicate: true}, nil
	}

	if !s.queue.Enqueue(ctx, sub) {
		s.deduper.Unrecord(ctx, sub.ID)
		if s.queue.IsClosed() {
			return SubmitResult{}, ErrNotStarted
		}
		if err := ctx.Err(); err != nil {
			return SubmitResult{}, err
		}
		return SubmitResult{}, ErrQueueFull
	}

	s.logger.Debug(ctx, "entry queued",
		logger.String("entry_id", sub.ID),
		logger.String("shape", sub.Entry.Shape().String()),
	)
	return SubmitResult{ID: sub.ID}, nil
}

func (s *Service) parse(raw []byte) (model.Submission, error) {
	entry, err := model.ParseEntry(raw)
	if err != nil {
		metrics.RecordEntryRejected("invalid")
		return model.Submission{}, err
	}
	id, err := entry.TakeID()
	if err != nil {
		metrics.RecordEntryRejected("invalid")
		return model.Submission{}, err
	}
	metrics.RecordEntryReceived(entry.Shape().String())
	return model.Submission{ID: id, Entry: entry, ReceivedAt: time.Now().UTC()}, nil
}

// Get returns a stored entry and its rank.
func (s *Service) Get(ctx context.Context, id string) (repository.Ranked, error) {
	store, err := s.currentStore()
	if err != nil {
		return repository.Ranked{}, err
	}
	return store.Get(ctx, id)
}

// TopN returns the n best stored entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Ranked, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}
	return store.TopN(ctx, n)
}

func (s *Service) currentStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Started:           s.started,
		Season:            s.schema.Name(),
		StoreDriver:       s.storeDriver,
		StrictExclusivity: s.strict,
		WorkerCount:       s.workerCount,
		QueueSize:         s.queueSize,
		DedupeSize:        s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	stats.WorkerCount = s.pool.Size()
	stats.QueueLength = s.queue.Len(ctx)
	stats.SeenIDs = s.deduper.Size()
	stats.Processed = s.pool.Processed()
	if n, err := s.store.Count(ctx); err == nil {
		stats.StoredEntries = n
	} else {
		s.logger.Warn(ctx, "count stored entries", logger.Error(err))
	}

	metrics.UpdateQueueSize(stats.QueueLength)
	return stats
}
