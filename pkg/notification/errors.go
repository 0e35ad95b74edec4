package notification

import (
	"errors"
	"fmt"
)

// Common errors returned by the notification package.
var (
	// ErrMalformedJSON is returned when a record is not a JSON object.
	ErrMalformedJSON = errors.New("malformed notification JSON")

	// ErrMissingField is returned when a record lacks a field its action requires.
	ErrMissingField = errors.New("missing required field")
)

// MalformedRecordError describes a record that cannot be aggregated.
type MalformedRecordError struct {
	Action Action // Action of the offending record (may be empty)
	Field  string // Missing or invalid field, empty for JSON errors
	Err    error  // Underlying error
}

func (e *MalformedRecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed %q notification: %s: %v", e.Action, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed notification: %v", e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
