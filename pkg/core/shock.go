package core

import "fmt"

// NumShockStates is the size of the discrete shock space.
const NumShockStates = 2

// ShockProcess is the two-state Markov chain for the investment-specific shock.
// State 0 is the positive realization +sigma, state 1 the negative one.
type ShockProcess struct {
	values     [NumShockStates]float64
	transition [NumShockStates][NumShockStates]float64
}

// NewShockProcess builds the symmetric chain with persistence lambda:
// P(stay) = (lambda+1)/2 and P(switch) = 1 - P(stay) in both states.
func NewShockProcess(sigma, lambda float64) (*ShockProcess, error) {
	if sigma < 0 {
		return nil, fmt.Errorf("shock standard deviation %g must be non-negative: %w", sigma, ErrInvalidParameter)
	}
	if lambda < -1 || lambda > 1 {
		return nil, fmt.Errorf("shock autocorrelation %g must lie in [-1, 1]: %w", lambda, ErrInvalidParameter)
	}

	stay := 0.5 * (lambda + 1)
	move := 1 - stay
	return &ShockProcess{
		values: [NumShockStates]float64{sigma, -sigma},
		transition: [NumShockStates][NumShockStates]float64{
			{stay, move},
			{move, stay},
		},
	}, nil
}

// Len returns the number of shock states.
func (s *ShockProcess) Len() int {
	return NumShockStates
}

// Value returns the shock realization in state i.
func (s *ShockProcess) Value(i int) float64 {
	return s.values[i]
}

// Values returns the shock realizations in state order.
func (s *ShockProcess) Values() []float64 {
	return []float64{s.values[0], s.values[1]}
}

// Prob returns P(next = j | today = i).
func (s *ShockProcess) Prob(i, j int) float64 {
	return s.transition[i][j]
}

// Row returns the conditional distribution of tomorrow's state given today's state i.
func (s *ShockProcess) Row(i int) [NumShockStates]float64 {
	return s.transition[i]
}

// Matrix returns a copy of the transition matrix, rows indexed by today's state.
func (s *ShockProcess) Matrix() [][]float64 {
	out := make([][]float64, NumShockStates)
	for i := range out {
		out[i] = []float64{s.transition[i][0], s.transition[i][1]}
	}
	return out
}
