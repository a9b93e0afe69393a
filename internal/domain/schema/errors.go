package schema

import "errors"

// Sentinel kinds for schema errors.
var (
	ErrInvalidSchema   = errors.New("invalid scoring schema")
	ErrUnknownSeason   = errors.New("unknown season")
	ErrDuplicateSeason = errors.New("season already registered")
	ErrLoadSchema      = errors.New("load scoring schema failed")
)
