// Package config provides configuration management for the solver.
//
// This package handles loading, validation, and conversion of the model
// calibration and solve controls from a YAML file, environment variables,
// and command-line flags.
//
// Configuration Types:
//
//   - ScenarioConfig: one resolved parameter vector plus solve controls
//   - ModelConfig: structural parameters and the capital grid
//   - SolveConfig: tolerance, iteration budget, search bounds, workers
//
// Configuration Sources:
//
//  1. Command-line flags registered with AddSolveFlags (highest priority)
//  2. The named entry under "scenarios"
//  3. Environment variables with the GHH_ prefix (e.g. GHH_DEFAULT_MODEL_SIGMA)
//  4. The "default" section of the YAML file
//  5. Built-in defaults (lowest priority)
//
// A scenario only replaces the keys it sets, explicit zeros included:
//
//	default:
//	  model:
//	    gridPoints: 100
//	scenarios:
//	  deterministic:
//	    model:
//	      sigma: 0
//
// Example usage:
//
//	cfg, err := config.Load(ctx, config.LoadOptions{Path: "ghh.yaml", Scenario: "deterministic"})
//	if err != nil {
//		return err
//	}
//	model, err := cfg.NewModel()
//	s, err := solver.NewSolver(model, cfg.SolverOptions())
package config
