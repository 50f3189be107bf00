package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/llm-d/ghh-growth-solver/internal/logging"
	"github.com/llm-d/ghh-growth-solver/pkg/core"
)

// Options configures a single solve.
type Options struct {
	// Tolerance is the sup-norm threshold for convergence.
	Tolerance float64
	// MaxIterations caps the number of Bellman sweeps.
	MaxIterations int
	// Penalty is the value assigned to infeasible candidates. Strongly negative.
	Penalty float64
	// WarmStart is the initial value table; nil starts from zeros.
	WarmStart *core.ValueTable

	// ModifiedPolicyIteration enables PolicyRefiner passes between sweeps.
	ModifiedPolicyIteration bool
	// PolicySweeps is the number of refinement sweeps per pass.
	PolicySweeps int

	// Search bounds the static (h, l) grid search.
	Search SearchBounds
	// StaticGridPoints is the size of each static search grid; 0 uses the
	// capital grid size.
	StaticGridPoints int
	// ReuseStaticChoices solves the static problem once per state per solve.
	ReuseStaticChoices bool

	// Workers bounds the goroutines used per sweep; 0 uses GOMAXPROCS.
	Workers int
	// Recorder receives progress events; nil disables them.
	Recorder Recorder
}

// DefaultOptions returns the baseline solve configuration.
func DefaultOptions() Options {
	return Options{
		Tolerance:     10e-5,
		MaxIterations: 10000,
		Penalty:       -500,
		PolicySweeps:  10,
		Search:        DefaultSearchBounds(),
	}
}

func (o Options) validate() error {
	if !(o.Tolerance > 0) {
		return fmt.Errorf("tolerance must be > 0, got %g", o.Tolerance)
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("maxIterations must be > 0, got %d", o.MaxIterations)
	}
	if o.ModifiedPolicyIteration && o.PolicySweeps <= 0 {
		return fmt.Errorf("policySweeps must be > 0 when modified policy iteration is enabled, got %d", o.PolicySweeps)
	}
	if o.StaticGridPoints < 0 {
		return fmt.Errorf("staticGridPoints must be >= 0, got %d", o.StaticGridPoints)
	}
	return nil
}

// Result is the output of a converged solve.
type Result struct {
	Value  *core.ValueTable
	Policy *core.PolicyTable
	// Elapsed is the wall-clock time spent in Solve.
	Elapsed time.Duration
	// Iterations is the number of Bellman sweeps performed.
	Iterations int
	// Diff is the sup-norm change measured on the last sweep.
	Diff float64
	// DiffHistory holds the diff of every sweep in order.
	DiffHistory []float64
}

// Phase is a state of the solver's iteration state machine.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseIterating
	PhaseConverged
	PhaseBudgetExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "Initializing"
	case PhaseIterating:
		return "Iterating"
	case PhaseConverged:
		return "Converged"
	case PhaseBudgetExhausted:
		return "BudgetExhausted"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Solver runs value function iteration on a model.
type Solver struct {
	model    *core.Model
	opts     Options
	static   *StaticChoiceSolver
	recorder Recorder
}

// NewSolver validates opts and builds the static search grids.
func NewSolver(model *core.Model, opts Options) (*Solver, error) {
	if model == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	points := opts.StaticGridPoints
	if points == 0 {
		points = model.Capital.Len()
	}
	static, err := NewStaticChoiceSolver(model.Params, opts.Search, points)
	if err != nil {
		return nil, err
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Solver{model: model, opts: opts, static: static, recorder: recorder}, nil
}

// StaticSolver returns the static choice solver built for this solve.
func (s *Solver) StaticSolver() *StaticChoiceSolver {
	return s.static
}

// run holds the mutable state of one Solve call.
type run struct {
	phase   Phase
	bellman *BellmanEvaluator
	refiner *PolicyRefiner
	value   *core.ValueTable
	policy  *core.PolicyTable
	sweeps  int
	diff    float64
	history []float64
}

// Solve iterates the Bellman operator until the sup-norm change falls to the
// tolerance. If the iteration budget runs out first it returns a
// *NonConvergenceError.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	logger := logging.FromContext(ctx).WithName("solver")
	start := time.Now()

	r := &run{phase: PhaseInitializing}
	for {
		switch r.phase {
		case PhaseInitializing:
			if err := s.initialize(ctx, r); err != nil {
				s.recorder.ObserveSolve(OutcomeError, time.Since(start))
				return nil, err
			}
			logger.Info("Starting value function iteration",
				"capitalPoints", s.model.Capital.Len(),
				"shockStates", s.model.Shocks.Len(),
				"tolerance", s.opts.Tolerance,
				"maxIterations", s.opts.MaxIterations,
				"modifiedPolicyIteration", s.opts.ModifiedPolicyIteration)
			r.phase = PhaseIterating

		case PhaseIterating:
			if err := s.sweep(ctx, r); err != nil {
				s.recorder.ObserveSolve(OutcomeError, time.Since(start))
				return nil, err
			}
			logger.V(logging.DEBUG).Info("Completed sweep", "iteration", r.sweeps, "diff", r.diff)
			r.phase = s.next(r)

		case PhaseConverged:
			elapsed := time.Since(start)
			s.recorder.ObserveSolve(OutcomeConverged, elapsed)
			logger.Info("Value function iteration converged",
				"iterations", r.sweeps,
				"diff", r.diff,
				"elapsed", elapsed)
			return &Result{
				Value:       r.value,
				Policy:      r.policy,
				Elapsed:     elapsed,
				Iterations:  r.sweeps,
				Diff:        r.diff,
				DiffHistory: r.history,
			}, nil

		case PhaseBudgetExhausted:
			s.recorder.ObserveSolve(OutcomeNonConvergence, time.Since(start))
			err := &NonConvergenceError{Iterations: r.sweeps, Diff: r.diff, Tolerance: s.opts.Tolerance}
			logger.Error(err, "Iteration budget exhausted")
			return nil, err

		default:
			return nil, fmt.Errorf("unexpected solver phase %v", r.phase)
		}
	}
}

func (s *Solver) initialize(ctx context.Context, r *run) error {
	nK, nS := s.model.Capital.Len(), s.model.Shocks.Len()

	if w := s.opts.WarmStart; w != nil {
		rows, cols := w.Dims()
		if rows != nK || cols != nS {
			return fmt.Errorf("warm start has shape %dx%d, model needs %dx%d", rows, cols, nK, nS)
		}
		r.value = w.Clone()
	} else {
		r.value = core.NewValueTable(nK, nS)
	}
	r.policy = core.NewPolicyTable(nK, nS)

	var static StaticPolicy = NewOnDemandStaticPolicy(s.model, s.static)
	if s.opts.ReuseStaticChoices {
		table, err := NewStaticChoiceTable(ctx, s.model, s.static, s.opts.Workers)
		if err != nil {
			return fmt.Errorf("precomputing static choices: %w", err)
		}
		static = table
	}
	r.bellman = NewBellmanEvaluator(s.model, static)
	r.refiner = NewPolicyRefiner(s.model, static, s.opts.Workers)
	return nil
}

// sweep applies the Bellman operator to every state, followed by a
// refinement pass when modified policy iteration is on and the sweep has
// not converged.
func (s *Solver) sweep(ctx context.Context, r *run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	nK, nS := r.value.Dims()
	prev := r.value
	next := core.NewValueTable(nK, nS)
	policy := core.NewPolicyTable(nK, nS)

	err := forEachCapital(ctx, s.opts.Workers, nK, func(k int) {
		for sIdx := 0; sIdx < nS; sIdx++ {
			v, kNext := r.bellman.Evaluate(k, sIdx, prev, s.opts.Penalty)
			next.Set(k, sIdx, v)
			policy.Set(k, sIdx, kNext)
		}
	})
	if err != nil {
		return err
	}
	diff := next.MaxAbsDiff(prev)

	if s.opts.ModifiedPolicyIteration && diff > s.opts.Tolerance {
		refined, err := r.refiner.Refine(ctx, next, policy, s.opts.PolicySweeps, s.opts.Penalty)
		if err != nil {
			return err
		}
		s.recorder.ObserveRefinement(s.opts.PolicySweeps)
		logging.FromContext(ctx).V(logging.TRACE).Info("Refined value table under fixed policy",
			"sweeps", s.opts.PolicySweeps,
			"improvementDiff", diff)
		next = refined
		diff = next.MaxAbsDiff(prev)
	}

	r.value = next
	r.policy = policy
	r.sweeps++
	r.diff = diff
	r.history = append(r.history, diff)
	s.recorder.ObserveSweep(diff)
	return nil
}

func (s *Solver) next(r *run) Phase {
	switch {
	case r.diff <= s.opts.Tolerance:
		return PhaseConverged
	case r.sweeps >= s.opts.MaxIterations:
		return PhaseBudgetExhausted
	default:
		return PhaseIterating
	}
}
