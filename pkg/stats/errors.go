package stats

import "errors"

var (
	// ErrEmptyDistribution is returned when a percentile of nothing is asked for.
	ErrEmptyDistribution = errors.New("empty distribution")

	// ErrDivisionByZero is returned when an average has no population.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidPercentile indicates a percentile outside [0, 100].
	ErrInvalidPercentile = errors.New("percentile must be between 0 and 100")

	// ErrInvalidFraction indicates a top fraction outside (0, 1].
	ErrInvalidFraction = errors.New("top fraction must be in (0, 1]")
)
