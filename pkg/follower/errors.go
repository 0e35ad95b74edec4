package follower

import "errors"

var (
	// ErrEmptyUserID is returned when Load is called without a user id.
	ErrEmptyUserID = errors.New("user id is required")

	// ErrInvalidPageSize is returned for a non-positive page size.
	ErrInvalidPageSize = errors.New("follower page size must be positive")
)
