package model

import (
	"time"

	"github.com/okian/matchscout/internal/domain/schema"
)

// Points is the point total of a record per phase and overall.
type Points struct {
	Auto    int `json:"autoPoints" yaml:"auto"`
	Teleop  int `json:"teleopPoints" yaml:"teleop"`
	Endgame int `json:"endgamePoints" yaml:"endgame"`
	Total   int `json:"totalPoints" yaml:"total"`
}

// Violation reports a mutual-exclusion group with more than one true toggle.
type Violation struct {
	Phase schema.Phase `json:"phase" yaml:"phase"`
	Group string       `json:"group" yaml:"group"`
	Keys  []string     `json:"keys" yaml:"keys"`
}

// ScoredEntry is what gets persisted for an evaluated entry.
type ScoredEntry struct {
	ID         string      `json:"id"`
	Season     string      `json:"season"`
	Record     Record      `json:"record"`
	Points     Points      `json:"points"`
	Violations []Violation `json:"violations,omitempty"`
	ScoredAt   time.Time   `json:"scoredAt"`
}
