package solver

import (
	"errors"
	"fmt"
)

// ErrNonConvergence is matched by errors.Is when the iteration budget runs
// out before the tolerance is met.
var ErrNonConvergence = errors.New("value function iteration did not converge")

// NonConvergenceError carries the state of the solver when it gave up.
type NonConvergenceError struct {
	Iterations int
	Diff       float64
	Tolerance  float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("value function iteration reached %d iterations with sup-norm diff %g > tolerance %g",
		e.Iterations, e.Diff, e.Tolerance)
}

func (e *NonConvergenceError) Is(target error) bool {
	return target == ErrNonConvergence
}
