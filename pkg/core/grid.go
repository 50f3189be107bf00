package core

import "fmt"

// zeroBoundFactor scales the second grid point to replace an exact zero lower bound.
const zeroBoundFactor = 0.001

// LinSpace returns n evenly spaced points on [lower, upper]. The last point is
// exactly upper. A zero lower bound is replaced by zeroBoundFactor times the
// second point so that no grid contains an exact zero.
func LinSpace(name string, lower, upper float64, n int) ([]float64, error) {
	if lower < 0 {
		return nil, &BoundError{Grid: name, Lower: lower}
	}
	if n < 2 {
		return nil, fmt.Errorf("%s grid: need at least 2 points, got %d: %w", name, n, ErrInvalidGrid)
	}
	if !(upper > lower) {
		return nil, fmt.Errorf("%s grid: upper bound %g must exceed lower bound %g: %w", name, upper, lower, ErrInvalidGrid)
	}

	step := (upper - lower) / float64(n-1)
	points := make([]float64, n)
	for i := range points {
		points[i] = lower + float64(i)*step
	}
	points[n-1] = upper

	if lower == 0 {
		points[0] = zeroBoundFactor * points[1]
	}
	return points, nil
}

// CapitalGrid is the ordered, strictly increasing set of capital levels.
type CapitalGrid struct {
	points []float64
}

// NewCapitalGrid builds a grid of n capital levels on [kMin, kMax].
func NewCapitalGrid(kMin, kMax float64, n int) (*CapitalGrid, error) {
	points, err := LinSpace("capital", kMin, kMax, n)
	if err != nil {
		return nil, err
	}
	return &CapitalGrid{points: points}, nil
}

// Len returns the number of grid points.
func (g *CapitalGrid) Len() int {
	return len(g.points)
}

// At returns the capital level at index i.
func (g *CapitalGrid) At(i int) float64 {
	return g.points[i]
}

// Points returns a copy of the grid.
func (g *CapitalGrid) Points() []float64 {
	out := make([]float64, len(g.points))
	copy(out, g.points)
	return out
}

// Nearest returns the index of the grid point closest to k.
func (g *CapitalGrid) Nearest(k float64) int {
	best := 0
	for i, p := range g.points {
		if abs(p-k) < abs(g.points[best]-k) {
			best = i
		}
	}
	return best
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
