// Package schema defines the per-season scoring schema: which actions are
// counted, which robot-status toggles exist, and how many points each is worth.
//
// A Schema is immutable once built by New and is safe for concurrent readers.
// Several schemas may live in one process (one per season).
package schema

import (
	"fmt"
	"strings"
)

// Phase is a fixed time segment of a match.
type Phase string

// Match phases.
const (
	PhaseAuto    Phase = "auto"
	PhaseTeleop  Phase = "teleop"
	PhaseEndgame Phase = "endgame"
)

// Phases lists every phase in match order.
var Phases = []Phase{PhaseAuto, PhaseTeleop, PhaseEndgame}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseAuto, PhaseTeleop, PhaseEndgame:
		return true
	}
	return false
}

// StartPositionField is the auto-phase field holding the selected start position.
const StartPositionField = "startPosition"

// counterSuffix is appended to an action key to form its counter field name.
const counterSuffix = "Count"

// CounterField returns the canonical counter field name for an action key.
func CounterField(key string) string {
	return key + counterSuffix
}

// ActionDef declares one scorable action and its per-unit value in each phase.
type ActionDef struct {
	Key    string `koanf:"key" json:"key" yaml:"key"`
	Auto   int    `koanf:"auto" json:"auto" yaml:"auto"`
	Teleop int    `koanf:"teleop" json:"teleop" yaml:"teleop"`
}

// ToggleDef declares one boolean status fact and its flat award.
type ToggleDef struct {
	Key    string `koanf:"key" json:"key" yaml:"key"`
	Points int    `koanf:"points" json:"points" yaml:"points"`
	// Group names a mutual-exclusion group; empty means none.
	Group string `koanf:"group" json:"group,omitempty" yaml:"group,omitempty"`
}

// ToggleDefs groups toggle declarations by phase.
type ToggleDefs struct {
	Auto    []ToggleDef `koanf:"auto" json:"auto" yaml:"auto"`
	Teleop  []ToggleDef `koanf:"teleop" json:"teleop" yaml:"teleop"`
	Endgame []ToggleDef `koanf:"endgame" json:"endgame" yaml:"endgame"`
}

// Definition is the declarative, loadable form of a season's scoring rules.
type Definition struct {
	Name    string      `koanf:"name" json:"name" yaml:"name"`
	Actions []ActionDef `koanf:"actions" json:"actions" yaml:"actions"`
	Toggles ToggleDefs  `koanf:"toggles" json:"toggles" yaml:"toggles"`
}

func (d ToggleDefs) forPhase(p Phase) []ToggleDef {
	switch p {
	case PhaseAuto:
		return d.Auto
	case PhaseTeleop:
		return d.Teleop
	case PhaseEndgame:
		return d.Endgame
	}
	return nil
}

type toggleInfo struct {
	phase  Phase
	points int
	group  string
}

// Schema is a validated, read-only scoring table.
type Schema struct {
	def        Definition
	actionKeys []string
	actions    map[string]ActionDef
	toggleKeys map[Phase][]string
	toggles    map[string]toggleInfo
}

// New validates def and builds an immutable Schema from a private copy of it.
func New(def Definition) (*Schema, error) {
	def = def.clone()
	if err := validate(def); err != nil {
		return nil, err
	}

	s := &Schema{
		def:        def,
		actionKeys: make([]string, 0, len(def.Actions)),
		actions:    make(map[string]ActionDef, len(def.Actions)),
		toggleKeys: make(map[Phase][]string, len(Phases)),
		toggles:    make(map[string]toggleInfo),
	}
	for _, a := range def.Actions {
		s.actionKeys = append(s.actionKeys, a.Key)
		s.actions[a.Key] = a
	}
	for _, p := range Phases {
		defs := def.Toggles.forPhase(p)
		keys := make([]string, 0, len(defs))
		for _, t := range defs {
			keys = append(keys, t.Key)
			s.toggles[t.Key] = toggleInfo{phase: p, points: t.Points, group: t.Group}
		}
		s.toggleKeys[p] = keys
	}
	return s, nil
}

// MustNew is like New but panics on an invalid definition. Intended for
// compiled-in seasons only.
func MustNew(def Definition) *Schema {
	s, err := New(def)
	if err != nil {
		panic(err)
	}
	return s
}

func validate(def Definition) error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSchema)
	}

	counterFields := make(map[string]string, len(def.Actions))
	seenActions := make(map[string]struct{}, len(def.Actions))
	for i, a := range def.Actions {
		if strings.TrimSpace(a.Key) == "" {
			return fmt.Errorf("%w: actions[%d]: empty key", ErrInvalidSchema, i)
		}
		if _, dup := seenActions[a.Key]; dup {
			return fmt.Errorf("%w: duplicate action key %q", ErrInvalidSchema, a.Key)
		}
		if a.Auto < 0 || a.Teleop < 0 {
			return fmt.Errorf("%w: action %q: negative point value", ErrInvalidSchema, a.Key)
		}
		seenActions[a.Key] = struct{}{}
		counterFields[CounterField(a.Key)] = a.Key
	}

	seenToggles := make(map[string]Phase)
	for _, p := range Phases {
		for i, t := range def.Toggles.forPhase(p) {
			if strings.TrimSpace(t.Key) == "" {
				return fmt.Errorf("%w: toggles.%s[%d]: empty key", ErrInvalidSchema, p, i)
			}
			if prev, dup := seenToggles[t.Key]; dup {
				return fmt.Errorf("%w: duplicate toggle key %q (%s and %s)", ErrInvalidSchema, t.Key, prev, p)
			}
			if t.Points < 0 {
				return fmt.Errorf("%w: toggle %q: negative point value", ErrInvalidSchema, t.Key)
			}
			if t.Key == StartPositionField {
				return fmt.Errorf("%w: toggle key %q is reserved", ErrInvalidSchema, t.Key)
			}
			if action, clash := counterFields[t.Key]; clash && p != PhaseEndgame {
				return fmt.Errorf("%w: toggle %q collides with counter of action %q", ErrInvalidSchema, t.Key, action)
			}
			seenToggles[t.Key] = p
		}
	}
	return nil
}

// Name returns the season name.
func (s *Schema) Name() string { return s.def.Name }

// Definition returns a copy of the declarative form the schema was built from.
func (s *Schema) Definition() Definition { return s.def.clone() }

// ActionKeys returns every declared action key in declaration order.
func (s *Schema) ActionKeys() []string {
	out := make([]string, len(s.actionKeys))
	copy(out, s.actionKeys)
	return out
}

// HasAction reports whether key is a declared action.
func (s *Schema) HasAction(key string) bool {
	_, ok := s.actions[key]
	return ok
}

// ActionPoints returns the per-unit value of key in phase p. Unknown keys,
// the endgame phase and unpriced phases all yield 0.
func (s *Schema) ActionPoints(key string, p Phase) int {
	a, ok := s.actions[key]
	if !ok {
		return 0
	}
	switch p {
	case PhaseAuto:
		return a.Auto
	case PhaseTeleop:
		return a.Teleop
	}
	return 0
}

// ToggleKeys returns the toggles declared for phase p in declaration order.
func (s *Schema) ToggleKeys(p Phase) []string {
	keys := s.toggleKeys[p]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// HasToggle reports whether key is a toggle declared for phase p.
func (s *Schema) HasToggle(key string, p Phase) bool {
	t, ok := s.toggles[key]
	return ok && t.phase == p
}

// TogglePoints returns the flat award for key, or 0 if it is not declared.
func (s *Schema) TogglePoints(key string) int {
	return s.toggles[key].points
}

// ToggleGroup returns the mutual-exclusion group of key, if it has one.
func (s *Schema) ToggleGroup(key string) (string, bool) {
	t, ok := s.toggles[key]
	if !ok || t.group == "" {
		return "", false
	}
	return t.group, true
}

// Groups returns the mutual-exclusion groups of phase p, members in
// declaration order.
func (s *Schema) Groups(p Phase) map[string][]string {
	out := make(map[string][]string)
	for _, key := range s.toggleKeys[p] {
		if g := s.toggles[key].group; g != "" {
			out[g] = append(out[g], key)
		}
	}
	return out
}

func (d Definition) clone() Definition {
	out := Definition{Name: d.Name}
	out.Actions = append([]ActionDef(nil), d.Actions...)
	out.Toggles.Auto = append([]ToggleDef(nil), d.Toggles.Auto...)
	out.Toggles.Teleop = append([]ToggleDef(nil), d.Toggles.Teleop...)
	out.Toggles.Endgame = append([]ToggleDef(nil), d.Toggles.Endgame...)
	return out
}
