// Package aggregate turns raw match entries into canonical, schema-complete
// records.
//
// Aggregation is an ordered pipeline of stages. Each stage reads the raw entry
// and writes into the record under construction:
//
//	defaults -> startPosition -> bulk -> legacy -> status -> passthrough
//
// Bulk counters (the current input shape) are copied first and legacy action
// events (the old shape) are then added on top, so an entry carrying both a
// bulk value of 4 and events worth 2 and 3 for the same action counts 9.
package aggregate

import (
	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/internal/domain/schema"
)

// Stage is one step of the aggregation pipeline.
type Stage func(s *schema.Schema, in model.Entry, out *model.Record)

// Aggregator builds canonical records against a single schema. It holds no
// mutable state and may be shared between goroutines.
type Aggregator struct {
	schema *schema.Schema
	stages []Stage
}

// New returns an Aggregator bound to s.
func New(s *schema.Schema) *Aggregator {
	return &Aggregator{
		schema: s,
		stages: []Stage{
			ApplyDefaults,
			ApplyStartPosition,
			ApplyBulk,
			ApplyLegacy,
			ApplyStatus,
			ApplyPassthrough,
		},
	}
}

// Schema returns the schema the aggregator was built with.
func (a *Aggregator) Schema() *schema.Schema { return a.schema }

// Aggregate runs the full pipeline over e. It never fails: unknown keys are
// ignored and missing structures contribute nothing.
func (a *Aggregator) Aggregate(e model.Entry) model.Record {
	var rec model.Record
	for _, stage := range a.stages {
		stage(a.schema, e, &rec)
	}
	return rec
}

// ApplyDefaults resets out to the all-defaults record of s: every declared
// counter 0 in auto and teleop, every declared toggle false in its phase.
func ApplyDefaults(s *schema.Schema, _ model.Entry, out *model.Record) {
	out.Auto = model.NewPhaseRecord()
	out.Teleop = model.NewPhaseRecord()
	out.Endgame = model.NewPhaseRecord()
	out.StartPosition = nil
	out.Extra = nil

	for _, key := range s.ActionKeys() {
		out.Auto.Counts[key] = 0
		out.Teleop.Counts[key] = 0
	}
	for _, p := range schema.Phases {
		pr := out.Phase(p)
		for _, key := range s.ToggleKeys(p) {
			pr.Toggles[key] = false
		}
	}
}

// ApplyStartPosition records the first selected start position. Later
// selections are ignored; no selection leaves it nil.
func ApplyStartPosition(_ *schema.Schema, in model.Entry, out *model.Record) {
	for i, selected := range in.StartPosition {
		if selected {
			pos := i
			out.StartPosition = &pos
			return
		}
	}
}

// ApplyBulk copies bulk counter values over the defaults. A value may be keyed
// by counter field name or by bare action key; the counter field name wins
// when both are present.
func ApplyBulk(s *schema.Schema, in model.Entry, out *model.Record) {
	if !in.Shape().HasBulk() {
		return
	}
	copyBulk(s, in.AutoBulk, out.Auto)
	copyBulk(s, in.TeleopBulk, out.Teleop)
}

func copyBulk(s *schema.Schema, bulk map[string]int, pr model.PhaseRecord) {
	if bulk == nil {
		return
	}
	for _, key := range s.ActionKeys() {
		n, ok := bulk[schema.CounterField(key)]
		if !ok {
			n, ok = bulk[key]
		}
		if !ok || n < 0 {
			continue
		}
		pr.Counts[key] = min(n, model.MaxCount)
	}
}

// ApplyLegacy adds discrete action events onto the counters. Events naming
// undeclared actions and non-positive increments are ignored. Counters
// saturate at model.MaxCount.
func ApplyLegacy(s *schema.Schema, in model.Entry, out *model.Record) {
	if !in.Shape().HasEvents() {
		return
	}
	addEvents(s, in.AutoActions, out.Auto)
	addEvents(s, in.TeleopActions, out.Teleop)
}

func addEvents(s *schema.Schema, events []model.ActionEvent, pr model.PhaseRecord) {
	for _, ev := range events {
		if !s.HasAction(ev.ActionType) {
			continue
		}
		n := ev.Amount()
		if n <= 0 {
			continue
		}
		if cur := pr.Counts[ev.ActionType]; n >= model.MaxCount-cur {
			pr.Counts[ev.ActionType] = model.MaxCount
		} else {
			pr.Counts[ev.ActionType] = cur + n
		}
	}
}

// ApplyStatus overlays robot-status flags onto the toggles of their phase.
// A provided false is honored; toggles not declared for the phase are ignored.
func ApplyStatus(s *schema.Schema, in model.Entry, out *model.Record) {
	overlay(s, schema.PhaseAuto, in.AutoStatus, out.Auto)
	overlay(s, schema.PhaseTeleop, in.TeleopStatus, out.Teleop)
	overlay(s, schema.PhaseEndgame, in.EndgameStatus, out.Endgame)
}

func overlay(s *schema.Schema, p schema.Phase, status map[string]bool, pr model.PhaseRecord) {
	for key, v := range status {
		if s.HasToggle(key, p) {
			pr.Toggles[key] = v
		}
	}
}

// ApplyPassthrough copies unconsumed top-level fields onto the record.
func ApplyPassthrough(_ *schema.Schema, in model.Entry, out *model.Record) {
	if len(in.Extra) == 0 {
		return
	}
	out.Extra = make(map[string]any, len(in.Extra))
	for k, v := range in.Extra {
		out.Extra[k] = v
	}
}
