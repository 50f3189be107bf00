// Package core provides the fundamental data structures of the GHH growth model.
//
// This package contains the domain values that every solver component reads:
//
//   - ModelParameters: structural constants (technology, preferences, shock process)
//   - CapitalGrid: the discretized capital state space
//   - ShockProcess: the two-state Markov chain for the investment-specific shock
//   - Model: the immutable bundle of the three above
//   - ValueTable / PolicyTable: the iterates produced by the solver
//
// Example usage:
//
//	params := core.DefaultModelParameters()
//	model, err := core.NewModel(params, 0, 5, 100)
//	if err != nil {
//	    return err
//	}
//
//	v := core.NewValueTable(model.Capital.Len(), model.Shocks.Len())
//
// Everything except the tables is read-only after construction, so the same
// Model can be shared by any number of concurrent sweeps.
package core
