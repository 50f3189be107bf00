package solver

import "time"

// Outcome labels how a solve ended.
type Outcome string

const (
	OutcomeConverged      Outcome = "converged"
	OutcomeNonConvergence Outcome = "non_convergence"
	OutcomeError          Outcome = "error"
)

// Recorder receives progress events from the solver.
type Recorder interface {
	// ObserveSweep is called after every Bellman sweep with the sup-norm diff
	// used for the convergence test.
	ObserveSweep(diff float64)
	// ObserveRefinement is called after a modified policy iteration pass.
	ObserveRefinement(sweeps int)
	// ObserveSolve is called once when a solve terminates.
	ObserveSolve(outcome Outcome, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveSweep(float64) {}

func (noopRecorder) ObserveRefinement(int) {}

func (noopRecorder) ObserveSolve(Outcome, time.Duration) {}
