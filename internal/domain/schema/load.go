package schema

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadFile reads a YAML season definition from path and validates it.
//
//	name: rebuilt-2026
//	actions:
//	  - {key: fuelScored, auto: 1, teleop: 1}
//	toggles:
//	  endgame:
//	    - {key: climbL2, points: 20, group: climb}
func LoadFile(ctx context.Context, path string) (*Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadSchema, path, err)
	}
	var def Definition
	if err := k.UnmarshalWithConf("", &def, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadSchema, path, err)
	}
	return New(def)
}
