package service

import "errors"

// Sentinel kinds for service errors. HTTP handlers map them to status codes.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrQueueFull          = errors.New("submission queue full")
	ErrExclusivity        = errors.New("mutually exclusive toggles set")
	ErrUnknownStoreDriver = errors.New("unknown store driver")
)
