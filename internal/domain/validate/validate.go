// Package validate reports mutual-exclusion violations in canonical records.
// It never alters a record or its score.
package validate

import (
	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/internal/domain/schema"
)

// Checker inspects records against the exclusion groups of one schema.
type Checker struct {
	groups map[schema.Phase][]group
}

type group struct {
	name string
	keys []string
}

// New returns a Checker for the groups declared in s.
func New(s *schema.Schema) *Checker {
	c := &Checker{groups: make(map[schema.Phase][]group)}
	for _, p := range schema.Phases {
		byName := s.Groups(p)
		// Keep group order stable: first member's declaration order.
		for _, key := range s.ToggleKeys(p) {
			name, ok := s.ToggleGroup(key)
			if !ok {
				continue
			}
			keys, pending := byName[name]
			if !pending {
				continue
			}
			c.groups[p] = append(c.groups[p], group{name: name, keys: keys})
			delete(byName, name)
		}
	}
	return c
}

// Check returns one violation per group with more than one true member, in
// phase then declaration order. A clean record yields nil.
func (c *Checker) Check(rec model.Record) []model.Violation {
	var out []model.Violation
	for _, p := range schema.Phases {
		for _, g := range c.groups[p] {
			var set []string
			for _, key := range g.keys {
				if rec.Toggle(p, key) {
					set = append(set, key)
				}
			}
			if len(set) > 1 {
				out = append(out, model.Violation{Phase: p, Group: g.name, Keys: set})
			}
		}
	}
	return out
}
