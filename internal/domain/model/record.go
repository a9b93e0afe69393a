package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/matchscout/internal/domain/schema"
)

// PhaseRecord holds the canonical counters and toggles of one phase.
// Counts are keyed by action key, Toggles by toggle key.
type PhaseRecord struct {
	Counts  map[string]int
	Toggles map[string]bool
}

// NewPhaseRecord returns an empty phase record with allocated maps.
func NewPhaseRecord() PhaseRecord {
	return PhaseRecord{Counts: make(map[string]int), Toggles: make(map[string]bool)}
}

// Record is the canonical, schema-complete representation of one entry.
type Record struct {
	Auto    PhaseRecord
	Teleop  PhaseRecord
	Endgame PhaseRecord
	// StartPosition belongs to the auto phase; nil when nothing was selected.
	StartPosition *int
	// Extra carries unconsumed top-level fields from the raw entry.
	Extra map[string]any
}

// Phase returns the record of phase p.
func (r Record) Phase(p schema.Phase) PhaseRecord {
	switch p {
	case schema.PhaseAuto:
		return r.Auto
	case schema.PhaseTeleop:
		return r.Teleop
	case schema.PhaseEndgame:
		return r.Endgame
	}
	return PhaseRecord{}
}

// Count returns the counter of key in phase p; absent keys read as 0.
func (r Record) Count(p schema.Phase, key string) int {
	return r.Phase(p).Counts[key]
}

// Toggle returns the toggle key in phase p; absent keys read as false.
func (r Record) Toggle(p schema.Phase, key string) bool {
	return r.Phase(p).Toggles[key]
}

// MarshalJSON flattens the record into the stored shape:
//
//	{"auto": {"startPosition": 1, "shootCount": 4, "mobility": true}, "teleop": {...}, "endgame": {...}, ...extra}
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+len(schema.Phases))
	for k, v := range r.Extra {
		out[k] = v
	}
	for _, p := range schema.Phases {
		pr := r.Phase(p)
		fields := make(map[string]any, len(pr.Counts)+len(pr.Toggles)+1)
		for key, n := range pr.Counts {
			fields[schema.CounterField(key)] = n
		}
		for key, b := range pr.Toggles {
			fields[key] = b
		}
		if p == schema.PhaseAuto {
			fields[schema.StartPositionField] = r.StartPosition
		}
		out[string(p)] = fields
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a record written by MarshalJSON. Numeric phase
// fields ending in "Count" are counters, boolean fields are toggles.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	rec := Record{Auto: NewPhaseRecord(), Teleop: NewPhaseRecord(), Endgame: NewPhaseRecord()}
	for field, v := range raw {
		p := schema.Phase(field)
		if !p.Valid() {
			if rec.Extra == nil {
				rec.Extra = make(map[string]any)
			}
			rec.Extra[field] = v
			continue
		}
		fields, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s: expected object", ErrInvalidRecord, field)
		}
		pr := rec.Phase(p)
		for name, val := range fields {
			if p == schema.PhaseAuto && name == schema.StartPositionField {
				if val == nil {
					continue
				}
				n, ok := toInt(val)
				if !ok {
					return fmt.Errorf("%w: auto.%s: expected integer", ErrInvalidRecord, name)
				}
				rec.StartPosition = &n
				continue
			}
			switch typed := val.(type) {
			case bool:
				pr.Toggles[name] = typed
			default:
				n, ok := toInt(val)
				if !ok || !strings.HasSuffix(name, "Count") {
					return fmt.Errorf("%w: %s.%s: unexpected value", ErrInvalidRecord, field, name)
				}
				pr.Counts[strings.TrimSuffix(name, "Count")] = n
			}
		}
	}
	*r = rec
	return nil
}
