// Package solver implements value function iteration for the GHH growth model.
//
// The solver package computes the fixed point of the discretized Bellman
// operator over the (capital, shock) state space of a core.Model.
//
// Key Components:
//
//   - StaticChoiceSolver: grid search for the utilization rate and labor input
//   - BellmanEvaluator: maximized value and next-capital choice for one state
//   - PolicyRefiner: modified policy iteration sweeps under a fixed policy
//   - Solver: the iteration state machine driving the components above
//
// Iteration Strategy:
//
// Each sweep applies the Bellman operator to every state:
//  1. Solve the static (h, l) problem once per state
//  2. Score every next-period capital level, screening out candidates whose
//     utility argument is not positive
//  3. Keep the first maximum in grid order
//  4. Measure the sup-norm change against the previous table
//
// With modified policy iteration enabled, a sweep that has not converged is
// followed by a fixed number of policy-evaluation sweeps before the next
// improvement step.
//
// Example usage:
//
//	model, err := core.NewModel(core.DefaultModelParameters(), 0, 5, 100)
//	if err != nil {
//	    return err
//	}
//
//	s, err := solver.NewSolver(model, solver.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//
//	result, err := s.Solve(ctx)
//	if errors.Is(err, solver.ErrNonConvergence) {
//	    log.Error(err, "raise the iteration budget or supply a warm start")
//	    return err
//	}
//
//	log.Info("solved", "iterations", result.Iterations, "elapsed", result.Elapsed)
//
// States within one sweep are independent: they read only the previous
// table, so the sweep runs on a bounded worker pool and synchronizes once
// at the end.
package solver
