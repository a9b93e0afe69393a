package loadgen

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// RawEntry is a generated match entry in wire form.
type RawEntry map[string]any

// ID returns the entry's id field.
func (e RawEntry) ID() string {
	id, _ := e["id"].(string)
	return id
}

// Generator produces random rebuilt-2026 entries. Shapes are mixed so the
// service sees bulk, legacy and mixed entries.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed, or with the clock when
// seed is zero.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Generate returns n entries with unique ids.
func (g *Generator) Generate(n int) []RawEntry {
	out := make([]RawEntry, n)
	for i := range out {
		out[i] = g.entry(i)
	}
	return out
}

var climbs = []string{"climbL1", "climbL2", "climbL3", "noClimb"}

func (g *Generator) entry(i int) RawEntry {
	e := RawEntry{
		"id":          uuid.NewString(),
		"matchNumber": i/6 + 1,
		"teamNumber":  1000 + g.rng.IntN(9000),
	}

	start := make([]bool, 3)
	start[g.rng.IntN(len(start))] = true
	e["startPosition"] = start

	switch g.rng.IntN(3) {
	case 0:
		e["autoData"] = g.bulk(8)
		e["teleopData"] = g.bulk(40)
	case 1:
		e["autoActions"] = g.events(4)
		e["teleopActions"] = g.events(12)
	default:
		e["autoData"] = g.bulk(4)
		e["teleopActions"] = g.events(8)
	}

	e["autoRobotStatus"] = map[string]bool{
		"leftStartZone": g.rng.IntN(4) != 0,
		"autoClimbL1":   g.rng.IntN(5) == 0,
	}
	e["teleopRobotStatus"] = map[string]bool{
		"playedDefense": g.rng.IntN(3) == 0,
	}
	endgame := map[string]bool{climbs[g.rng.IntN(len(climbs))]: true}
	if g.rng.IntN(10) == 0 {
		endgame["climbFailed"] = true
	}
	e["endgameRobotStatus"] = endgame
	return e
}

func (g *Generator) bulk(maxCount int) map[string]int {
	return map[string]int{
		"fuelScoredCount": g.rng.IntN(maxCount + 1),
		"fuelPassedCount": g.rng.IntN(maxCount/2 + 1),
	}
}

func (g *Generator) events(maxEvents int) []map[string]any {
	n := g.rng.IntN(maxEvents + 1)
	out := make([]map[string]any, 0, n)
	for range n {
		ev := map[string]any{"actionType": "fuelScored"}
		if g.rng.IntN(4) == 0 {
			ev["actionType"] = "fuelPassed"
		}
		if g.rng.IntN(2) == 0 {
			ev["increment"] = 1 + g.rng.IntN(5)
		}
		out = append(out, ev)
	}
	return out
}
