// Package scoring computes point totals from canonical records.
package scoring

import (
	"math"

	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/internal/domain/schema"
)

// Engine scores records against one schema. It is pure and safe for
// concurrent use.
type Engine struct {
	schema *schema.Schema
}

// New returns an Engine bound to s.
func New(s *schema.Schema) *Engine {
	return &Engine{schema: s}
}

// Schema returns the schema the engine was built with.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// AutoPoints sums counter*value over declared actions plus every true auto toggle.
func (e *Engine) AutoPoints(rec model.Record) int {
	return e.counterPoints(rec, schema.PhaseAuto) + e.togglePoints(rec, schema.PhaseAuto)
}

// TeleopPoints sums counter*value over declared actions plus every true teleop toggle.
func (e *Engine) TeleopPoints(rec model.Record) int {
	return e.counterPoints(rec, schema.PhaseTeleop) + e.togglePoints(rec, schema.PhaseTeleop)
}

// EndgamePoints sums the awards of every true endgame toggle. Mutual-exclusion
// groups are not enforced here; two true members both count.
func (e *Engine) EndgamePoints(rec model.Record) int {
	return e.togglePoints(rec, schema.PhaseEndgame)
}

// TotalPoints is the plain sum of the three phases.
func (e *Engine) TotalPoints(rec model.Record) int {
	return addSat(addSat(e.AutoPoints(rec), e.TeleopPoints(rec)), e.EndgamePoints(rec))
}

// Score returns every phase total at once.
func (e *Engine) Score(rec model.Record) model.Points {
	p := model.Points{
		Auto:    e.AutoPoints(rec),
		Teleop:  e.TeleopPoints(rec),
		Endgame: e.EndgamePoints(rec),
	}
	p.Total = addSat(addSat(p.Auto, p.Teleop), p.Endgame)
	return p
}

// Sums saturate at math.MaxInt; counts below zero contribute nothing.
func (e *Engine) counterPoints(rec model.Record, p schema.Phase) int {
	sum := 0
	for _, key := range e.schema.ActionKeys() {
		n, pts := rec.Count(p, key), e.schema.ActionPoints(key, p)
		if n <= 0 || pts <= 0 {
			continue
		}
		if n > math.MaxInt/pts {
			return math.MaxInt
		}
		sum = addSat(sum, n*pts)
	}
	return sum
}

func (e *Engine) togglePoints(rec model.Record, p schema.Phase) int {
	sum := 0
	for _, key := range e.schema.ToggleKeys(p) {
		if rec.Toggle(p, key) {
			sum = addSat(sum, e.schema.TogglePoints(key))
		}
	}
	return sum
}

// addSat adds two non-negative values, clamping at math.MaxInt.
func addSat(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}
