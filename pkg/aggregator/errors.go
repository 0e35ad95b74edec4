package aggregator

import "errors"

// Common errors returned by the aggregator package.
var (
	// ErrInvalidEvent is returned when an event lacks a key its kind needs.
	ErrInvalidEvent = errors.New("invalid event: missing actor or resource")
)
