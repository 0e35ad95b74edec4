package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPageSize indicates a page size that is not positive.
	ErrInvalidPageSize = errors.New("page size must be positive")

	// ErrInvalidQueueSize indicates a prefetch queue size out of range.
	ErrInvalidQueueSize = errors.New("queue size out of range")

	// ErrNilSource indicates an engine constructed without a source.
	ErrNilSource = errors.New("source is required")
)

// TransportError reports a page that could not be fetched.
//
// It is fatal for the run; no partial aggregate is returned with it.
type TransportError struct {
	Offset int
	Err    error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to load data at offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying fetch error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
