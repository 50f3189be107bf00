// Package analysis derives business-cycle moments from a solved model by
// simulating the policy function.
package analysis

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/llm-d/ghh-growth-solver/internal/collector"
	"github.com/llm-d/ghh-growth-solver/internal/logging"
	"github.com/llm-d/ghh-growth-solver/pkg/core"
	"github.com/llm-d/ghh-growth-solver/pkg/solver"
)

// SimulationOptions controls the length and randomness of a simulated path.
type SimulationOptions struct {
	// Periods is the number of recorded quarters.
	Periods int
	// BurnIn is the number of initial quarters discarded.
	BurnIn int
	// Seed makes the shock path reproducible.
	Seed uint64
	// InitialCapital is the starting capital grid index; negative means the
	// middle of the grid.
	InitialCapital int
	// InitialShock is the starting shock state.
	InitialShock int
}

// DefaultSimulationOptions returns 200 recorded quarters after a 100 quarter burn-in.
func DefaultSimulationOptions() SimulationOptions {
	return SimulationOptions{
		Periods:        200,
		BurnIn:         100,
		Seed:           1,
		InitialCapital: -1,
	}
}

// Simulation is a path of the model economy. All slices have one entry per
// recorded period.
type Simulation struct {
	Shocks      []int
	Capital     []float64
	Utilization []float64
	Labor       []float64
	Output      []float64
	Consumption []float64
	Investment  []float64
}

// Len returns the number of recorded periods.
func (s *Simulation) Len() int {
	return len(s.Capital)
}

// simulationStart labels the first recorded period.
var simulationStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Series returns the named variable as a quarterly time series, or nil for
// a variable the simulation does not record.
func (s *Simulation) Series(name string) *collector.TimeSeries {
	var values []float64
	switch name {
	case collector.SeriesOutput:
		values = s.Output
	case collector.SeriesConsumption:
		values = s.Consumption
	case collector.SeriesInvestment:
		values = s.Investment
	case collector.SeriesLabor:
		values = s.Labor
	case collector.SeriesUtilization:
		values = s.Utilization
	default:
		return nil
	}
	ts := collector.NewTimeSeries(name)
	for t, v := range values {
		ts.AddPoint(simulationStart.AddDate(0, 3*t, 0), v)
	}
	return ts
}

// Simulate draws a shock path from the Markov chain and follows the policy
// table from the initial state.
func Simulate(ctx context.Context, model *core.Model, static solver.StaticPolicy, policy *core.PolicyTable, opts SimulationOptions) (*Simulation, error) {
	nK, nS := model.Capital.Len(), model.Shocks.Len()
	if rows, cols := policy.Dims(); rows != nK || cols != nS {
		return nil, fmt.Errorf("policy has shape %dx%d, model needs %dx%d", rows, cols, nK, nS)
	}
	if opts.Periods < 1 {
		return nil, fmt.Errorf("periods must be >= 1, got %d", opts.Periods)
	}
	if opts.BurnIn < 0 {
		return nil, fmt.Errorf("burnIn must be >= 0, got %d", opts.BurnIn)
	}
	k := opts.InitialCapital
	if k < 0 {
		k = nK / 2
	}
	if k >= nK {
		return nil, fmt.Errorf("initial capital index %d is outside the grid", k)
	}
	s := opts.InitialShock
	if s < 0 || s >= nS {
		return nil, fmt.Errorf("initial shock state %d is outside [0, %d)", s, nS)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	sim := &Simulation{
		Shocks:      make([]int, 0, opts.Periods),
		Capital:     make([]float64, 0, opts.Periods),
		Utilization: make([]float64, 0, opts.Periods),
		Labor:       make([]float64, 0, opts.Periods),
		Output:      make([]float64, 0, opts.Periods),
		Consumption: make([]float64, 0, opts.Periods),
		Investment:  make([]float64, 0, opts.Periods),
	}
	p := model.Params

	for t := 0; t < opts.BurnIn+opts.Periods; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		kNext := policy.At(k, s)
		if t >= opts.BurnIn {
			kv, eps := model.Capital.At(k), model.Shocks.Value(s)
			choice := static.Choice(k, s)
			y := p.Output(kv, choice.H, choice.L)
			c := p.Consumption(kv, model.Capital.At(kNext), eps, choice)

			sim.Shocks = append(sim.Shocks, s)
			sim.Capital = append(sim.Capital, kv)
			sim.Utilization = append(sim.Utilization, choice.H)
			sim.Labor = append(sim.Labor, choice.L)
			sim.Output = append(sim.Output, y)
			sim.Consumption = append(sim.Consumption, c)
			sim.Investment = append(sim.Investment, y-c)
		}
		k = kNext
		s = nextShock(rng, model.Shocks, s)
	}

	logging.FromContext(ctx).V(logging.DEBUG).Info("Simulated model path",
		"periods", opts.Periods,
		"burnIn", opts.BurnIn,
		"seed", opts.Seed)
	return sim, nil
}

func nextShock(rng *rand.Rand, shocks *core.ShockProcess, s int) int {
	u := rng.Float64()
	var cum float64
	for j := 0; j < shocks.Len(); j++ {
		cum += shocks.Prob(s, j)
		if u < cum {
			return j
		}
	}
	return shocks.Len() - 1
}

// ModelMoments applies the log, HP filter and moments pipeline to the
// simulated variables. Productivity is constant in the model and reports
// NaN moments, as do variables whose cycle cannot be computed.
func ModelMoments(sim *Simulation, lambda float64) map[string]collector.Moments {
	cycles := make(map[string]*collector.TimeSeries, len(collector.SeriesNames))
	for _, name := range collector.SeriesNames {
		ts := sim.Series(name)
		if ts == nil {
			continue
		}
		cycle, err := collector.Cycle(ts.Log(), lambda)
		if err != nil {
			continue
		}
		cycles[name] = cycle
	}

	reference := cycles[collector.SeriesOutput]
	out := make(map[string]collector.Moments, len(collector.SeriesNames))
	for _, name := range collector.SeriesNames {
		cycle, ok := cycles[name]
		if !ok {
			out[name] = collector.MissingMoments()
			continue
		}
		out[name] = collector.ComputeMoments(cycle, reference)
	}
	return out
}
