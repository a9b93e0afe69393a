package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry indexes schemas by season name.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Builtin returns a registry holding every compiled-in season.
func Builtin() *Registry {
	r := NewRegistry()
	for _, def := range []Definition{Rebuilt2026(), Template()} {
		// Compiled-in definitions are covered by tests; a failure here is a programming error.
		if err := r.Register(MustNew(def)); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds s under its name.
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSeason, s.Name())
	}
	r.schemas[s.Name()] = s
	return nil
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeason, name)
	}
	return s, nil
}

// Names returns the registered season names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
