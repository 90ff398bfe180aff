package engine

import "errors"

var (
	// ErrInvalidDimensions is returned by NewWorld for non-positive grid sizes
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")

	// ErrNonFiniteDelta is returned by Simulate for NaN or infinite tick durations
	ErrNonFiniteDelta = errors.New("delta time must be finite")
)
