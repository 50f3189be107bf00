package solver

import (
	"context"
	"math"

	"github.com/llm-d/ghh-growth-solver/pkg/core"
)

// SearchBounds are the ranges searched for the utilization rate and labor input.
type SearchBounds struct {
	HMin float64
	HMax float64
	LMin float64
	LMax float64
}

// DefaultSearchBounds returns h in [0, 1] and l in [0, 50].
func DefaultSearchBounds() SearchBounds {
	return SearchBounds{HMin: 0, HMax: 1, LMin: 0, LMax: 50}
}

// StaticChoiceSolver finds the (h, l) pair maximizing the intra-period payoff
// by exhaustive search over a product grid.
type StaticChoiceSolver struct {
	params core.ModelParameters
	hGrid  []float64
	lGrid  []float64

	// l-only terms of the objective, independent of (k, eps).
	laborShare   []float64
	laborDisutil []float64
}

// NewStaticChoiceSolver builds utilization and labor grids with points entries each.
// A negative lower bound on either grid fails with core.ErrInvalidBound.
func NewStaticChoiceSolver(params core.ModelParameters, bounds SearchBounds, points int) (*StaticChoiceSolver, error) {
	hGrid, err := core.LinSpace("utilization", bounds.HMin, bounds.HMax, points)
	if err != nil {
		return nil, err
	}
	lGrid, err := core.LinSpace("labor", bounds.LMin, bounds.LMax, points)
	if err != nil {
		return nil, err
	}

	s := &StaticChoiceSolver{
		params:       params,
		hGrid:        hGrid,
		lGrid:        lGrid,
		laborShare:   make([]float64, len(lGrid)),
		laborDisutil: make([]float64, len(lGrid)),
	}
	for j, l := range lGrid {
		s.laborShare[j] = math.Pow(l, 1-params.Alpha)
		s.laborDisutil[j] = params.LaborDisutility(l)
	}
	return s, nil
}

// Solve returns the first maximizer of the static payoff in row-major (h, l) order.
func (s *StaticChoiceSolver) Solve(k, eps float64) core.StaticChoice {
	best := math.Inf(-1)
	var choice core.StaticChoice
	for _, h := range s.hGrid {
		capitalTerm := s.params.A * math.Pow(k*h, s.params.Alpha)
		undepreciated := s.params.UndepreciatedCapital(k, h, eps)
		for j, l := range s.lGrid {
			// Same operation order as ModelParameters.StaticPayoff.
			v := capitalTerm*s.laborShare[j] + undepreciated - s.laborDisutil[j]
			if v > best {
				best = v
				choice = core.StaticChoice{H: h, L: l}
			}
		}
	}
	return choice
}

// Objective evaluates the static payoff at an arbitrary choice.
func (s *StaticChoiceSolver) Objective(k, eps float64, c core.StaticChoice) float64 {
	return s.params.StaticPayoff(k, eps, c.H, c.L)
}

// UtilizationGrid returns a copy of the h grid.
func (s *StaticChoiceSolver) UtilizationGrid() []float64 {
	return append([]float64(nil), s.hGrid...)
}

// LaborGrid returns a copy of the l grid.
func (s *StaticChoiceSolver) LaborGrid() []float64 {
	return append([]float64(nil), s.lGrid...)
}

// StaticPolicy supplies the static choice for a state of the model.
type StaticPolicy interface {
	Choice(kIdx, sIdx int) core.StaticChoice
}

// NewOnDemandStaticPolicy solves the static problem afresh on every call.
func NewOnDemandStaticPolicy(model *core.Model, s *StaticChoiceSolver) StaticPolicy {
	return onDemandStatic{model: model, solver: s}
}

type onDemandStatic struct {
	model  *core.Model
	solver *StaticChoiceSolver
}

func (o onDemandStatic) Choice(kIdx, sIdx int) core.StaticChoice {
	return o.solver.Solve(o.model.Capital.At(kIdx), o.model.Shocks.Value(sIdx))
}

// StaticChoiceTable holds the static choice of every state, computed once.
// The static problem does not depend on the value function, so the table
// returns exactly what the on-demand policy would.
type StaticChoiceTable struct {
	cols    int
	choices []core.StaticChoice
}

// NewStaticChoiceTable solves every state of model on the worker pool.
func NewStaticChoiceTable(ctx context.Context, model *core.Model, s *StaticChoiceSolver, workers int) (*StaticChoiceTable, error) {
	nK, nS := model.Capital.Len(), model.Shocks.Len()
	t := &StaticChoiceTable{cols: nS, choices: make([]core.StaticChoice, nK*nS)}
	err := forEachCapital(ctx, workers, nK, func(k int) {
		for sIdx := 0; sIdx < nS; sIdx++ {
			t.choices[k*nS+sIdx] = s.Solve(model.Capital.At(k), model.Shocks.Value(sIdx))
		}
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *StaticChoiceTable) Choice(kIdx, sIdx int) core.StaticChoice {
	return t.choices[kIdx*t.cols+sIdx]
}
