package model

import "github.com/pkg/errors"

var (
	// ErrOutOfBounds is returned for coordinates outside the grid
	ErrOutOfBounds = errors.New("cell out of bounds")
	// ErrNotInitialized is returned when a transition is requested on a grid that was never seeded
	ErrNotInitialized = errors.New("grid not initialized")
	// ErrInvalidDimensions is returned for a non-positive row or column count
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
)
