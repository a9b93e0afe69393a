package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidEntry  = errors.New("invalid match entry")
	ErrInvalidRecord = errors.New("invalid canonical record")
)
