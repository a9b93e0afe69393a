// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Wire names of the raw match entry fields the engine consumes.
const (
	FieldAutoActions        = "autoActions"
	FieldTeleopActions      = "teleopActions"
	FieldAutoData           = "autoData"
	FieldTeleopData         = "teleopData"
	FieldAutoRobotStatus    = "autoRobotStatus"
	FieldTeleopRobotStatus  = "teleopRobotStatus"
	FieldEndgameRobotStatus = "endgameRobotStatus"
	FieldStartPosition      = "startPosition"

	// FieldID optionally names the entry. It is service metadata, not
	// scouting data, and is removed from Extra by TakeID.
	FieldID = "id"
)

// Shape tags which counter input formats a raw entry carries.
type Shape int

// Supported raw entry shapes.
const (
	// ShapeEmpty carries no counter input (status flags and extras only).
	ShapeEmpty Shape = iota
	// ShapeLegacy carries discrete action events only.
	ShapeLegacy
	// ShapeBulk carries bulk counter objects only.
	ShapeBulk
	// ShapeMixed carries both events and bulk counters.
	ShapeMixed
)

func (s Shape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeBulk:
		return "bulk"
	case ShapeMixed:
		return "mixed"
	default:
		return "empty"
	}
}

// HasEvents reports whether the shape includes discrete action events.
func (s Shape) HasEvents() bool { return s == ShapeLegacy || s == ShapeMixed }

// HasBulk reports whether the shape includes bulk counters.
func (s Shape) HasBulk() bool { return s == ShapeBulk || s == ShapeMixed }

// ActionEvent is one recorded occurrence of an action in the legacy format.
type ActionEvent struct {
	ActionType string `json:"actionType"`
	// Increment defaults to 1 when zero.
	Increment int `json:"increment,omitempty"`
}

// Amount returns the number of units the event adds.
func (e ActionEvent) Amount() int {
	if e.Increment == 0 {
		return 1
	}
	return e.Increment
}

// Entry is one observer's raw record of a match, already checked for
// structural validity. It is never mutated by the engine.
type Entry struct {
	// StartPosition is a one-hot (or all-false) selection of start spots.
	StartPosition []bool

	AutoActions   []ActionEvent
	TeleopActions []ActionEvent

	// AutoBulk and TeleopBulk hold direct counter values keyed by counter
	// field name ("shootCount") or bare action key ("shoot").
	AutoBulk   map[string]int
	TeleopBulk map[string]int

	AutoStatus    map[string]bool
	TeleopStatus  map[string]bool
	EndgameStatus map[string]bool

	// Extra holds every top-level field not listed above, verbatim.
	Extra map[string]any
}

// Shape derives the entry's tag from the counter inputs it carries.
func (e Entry) Shape() Shape {
	events := e.AutoActions != nil || e.TeleopActions != nil
	bulk := e.AutoBulk != nil || e.TeleopBulk != nil
	switch {
	case events && bulk:
		return ShapeMixed
	case events:
		return ShapeLegacy
	case bulk:
		return ShapeBulk
	}
	return ShapeEmpty
}

// Submission is an entry accepted for asynchronous scoring.
type Submission struct {
	ID         string
	Entry      Entry
	ReceivedAt time.Time
}

// TakeID removes the top-level id field from the passthrough fields and
// returns it. An absent, null or empty id yields "". Non-string, non-numeric ids
// are rejected.
func (e *Entry) TakeID() (string, error) {
	raw, ok := e.Extra[FieldID]
	if !ok {
		return "", nil
	}
	delete(e.Extra, FieldID)
	if len(e.Extra) == 0 {
		e.Extra = nil
	}
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	}
	return "", fmt.Errorf("%w: %s: expected string", ErrInvalidEntry, FieldID)
}
