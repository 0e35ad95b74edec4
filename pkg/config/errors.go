package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrInvalidBaseURL is returned when the API base URL is not absolute.
	ErrInvalidBaseURL = errors.New("invalid API base URL")

	// ErrInvalidPageSize is returned when the page size is <= 0.
	ErrInvalidPageSize = errors.New("invalid page size: must be > 0")

	// ErrInvalidFollowerPageSize is returned when the follower page size is <= 0.
	ErrInvalidFollowerPageSize = errors.New("invalid follower page size: must be > 0")

	// ErrInvalidMaxFollowerPages is returned when max follower pages is < 0.
	ErrInvalidMaxFollowerPages = errors.New("invalid max follower pages: must be >= 0")

	// ErrInvalidTimeout is returned when the request timeout is <= 0.
	ErrInvalidTimeout = errors.New("invalid timeout: must be > 0")

	// ErrInvalidRetry is returned when retry count or delay is negative.
	ErrInvalidRetry = errors.New("invalid retry settings: must be >= 0")

	// ErrInvalidQueueSize is returned when the prefetch queue size is out of range.
	ErrInvalidQueueSize = errors.New("invalid queue size: must be between 1 and 4")

	// ErrInvalidRowLimit is returned when a row limit is negative.
	ErrInvalidRowLimit = errors.New("invalid row limit: must be >= 0")

	// ErrInvalidDisplayFormat is returned when the display format is not recognized.
	ErrInvalidDisplayFormat = errors.New("invalid display format: must be table, json, or simple")

	// ErrNoDBPath is returned when history is enabled without a database path.
	ErrNoDBPath = errors.New("history recording requires storage.db_path")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
