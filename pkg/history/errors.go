package history

import "errors"

// Common errors returned by the history store.
var (
	// ErrRunNotFound is returned when a run is not found.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidID is returned when a run ID is not a UUID.
	ErrInvalidID = errors.New("invalid run ID")

	// ErrNameConflict is returned when a run name is already taken.
	ErrNameConflict = errors.New("run name already exists")

	// ErrEmptyName is returned when a run name is empty.
	ErrEmptyName = errors.New("run name cannot be empty")

	// ErrInvalidRun is returned when a run cannot be stored.
	ErrInvalidRun = errors.New("invalid run")

	// ErrNoDBPath is returned when no database path is configured.
	ErrNoDBPath = errors.New("database path is required")
)
