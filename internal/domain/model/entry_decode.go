package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ParseEntry decodes a JSON raw match entry and checks its structure.
func ParseEntry(data []byte) (Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if raw == nil {
		return Entry{}, fmt.Errorf("%w: entry must be a JSON object", ErrInvalidEntry)
	}
	return DecodeEntry(raw)
}

// MaxCount bounds every increment and bulk counter value accepted at the
// boundary and every canonical counter the engine produces.
const MaxCount = math.MaxInt32

// DecodeEntry converts a loosely-typed field bag into an Entry. Known fields
// with the wrong type are rejected; unknown keys inside known objects are kept
// for the engine to ignore; everything else, null included, is passed through
// in Extra. A null known field counts as absent.
func DecodeEntry(raw map[string]any) (Entry, error) {
	var (
		e   Entry
		err error
	)
	for field, v := range raw {
		if v == nil && isConsumed(field) {
			continue
		}
		switch field {
		case FieldStartPosition:
			e.StartPosition, err = decodeStartPosition(v)
		case FieldAutoActions:
			e.AutoActions, err = decodeEvents(field, v)
		case FieldTeleopActions:
			e.TeleopActions, err = decodeEvents(field, v)
		case FieldAutoData:
			e.AutoBulk, err = decodeBulk(field, v)
		case FieldTeleopData:
			e.TeleopBulk, err = decodeBulk(field, v)
		case FieldAutoRobotStatus:
			e.AutoStatus, err = decodeStatus(field, v)
		case FieldTeleopRobotStatus:
			e.TeleopStatus, err = decodeStatus(field, v)
		case FieldEndgameRobotStatus:
			e.EndgameStatus, err = decodeStatus(field, v)
		default:
			if e.Extra == nil {
				e.Extra = make(map[string]any)
			}
			e.Extra[field] = v
		}
		if err != nil {
			return Entry{}, err
		}
	}
	return e, nil
}

func isConsumed(field string) bool {
	switch field {
	case FieldStartPosition, FieldAutoActions, FieldTeleopActions, FieldAutoData, FieldTeleopData,
		FieldAutoRobotStatus, FieldTeleopRobotStatus, FieldEndgameRobotStatus:
		return true
	}
	return false
}

func decodeStartPosition(v any) ([]bool, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected array of booleans", ErrInvalidEntry, FieldStartPosition)
	}
	out := make([]bool, len(items))
	for i, item := range items {
		b, ok := item.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d]: expected boolean", ErrInvalidEntry, FieldStartPosition, i)
		}
		out[i] = b
	}
	return out, nil
}

func decodeEvents(field string, v any) ([]ActionEvent, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected array", ErrInvalidEntry, field)
	}
	out := make([]ActionEvent, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d]: expected object", ErrInvalidEntry, field, i)
		}
		// Events from other seasons' formats ({"type": "score", ...}) name no
		// action and match nothing; they are dropped like unknown actions.
		actionType, ok := obj["actionType"].(string)
		if !ok {
			continue
		}
		ev := ActionEvent{ActionType: actionType}
		if inc, present := obj["increment"]; present && inc != nil {
			n, ok := toInt(inc)
			if !ok || n < 1 || n > MaxCount {
				return nil, fmt.Errorf("%w: %s[%d].increment: expected integer in [1, %d]", ErrInvalidEntry, field, i, MaxCount)
			}
			ev.Increment = n
		}
		out = append(out, ev)
	}
	return out, nil
}

func decodeBulk(field string, v any) (map[string]int, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected object", ErrInvalidEntry, field)
	}
	out := make(map[string]int, len(obj))
	for key, val := range obj {
		if val == nil {
			continue
		}
		n, ok := toInt(val)
		if !ok || n < 0 || n > MaxCount {
			return nil, fmt.Errorf("%w: %s.%s: expected integer in [0, %d]", ErrInvalidEntry, field, key, MaxCount)
		}
		out[key] = n
	}
	return out, nil
}

func decodeStatus(field string, v any) (map[string]bool, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected object", ErrInvalidEntry, field)
	}
	out := make(map[string]bool, len(obj))
	for key, val := range obj {
		if b, ok := val.(bool); ok {
			out[key] = b
		}
	}
	return out, nil
}

// toInt accepts the numeric forms produced by encoding/json and by callers
// building field bags by hand. Non-integral values are rejected.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt64/2 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}
