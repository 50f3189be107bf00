package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBound is returned when a grid is requested with a negative lower bound.
	ErrInvalidBound = errors.New("invalid lower bound")

	// ErrInvalidGrid is returned when a grid has too few points or an empty range.
	ErrInvalidGrid = errors.New("invalid grid")

	// ErrInvalidParameter is returned by ModelParameters.Validate.
	ErrInvalidParameter = errors.New("invalid model parameter")
)

// BoundError reports a negative lower bound for a named grid
// (capital, utilization or labor).
type BoundError struct {
	Grid  string
	Lower float64
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("%s grid: lower bound %g must be non-negative", e.Grid, e.Lower)
}

func (e *BoundError) Unwrap() error {
	return ErrInvalidBound
}
