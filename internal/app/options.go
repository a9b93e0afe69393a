package service

import (
	"github.com/okian/matchscout/internal/domain/schema"
	"github.com/okian/matchscout/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSchema sets the season schema entries are scored against.
func WithSchema(s *schema.Schema) Option {
	return func(svc *Service) {
		if s != nil {
			svc.schema = s
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many entry IDs are remembered for deduplication.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStrictExclusivity makes Submit and Score reject entries that set more
// than one toggle of a mutual-exclusion group.
func WithStrictExclusivity(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithStore selects the store driver ("memory" or "sqlite") and, for sqlite,
// the database path.
func WithStore(driver, path string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
		}
		s.storePath = path
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
