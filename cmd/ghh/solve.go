package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/llm-d/ghh-growth-solver/internal/config"
	"github.com/llm-d/ghh-growth-solver/internal/logging"
	"github.com/llm-d/ghh-growth-solver/internal/metrics"
	"github.com/llm-d/ghh-growth-solver/internal/snapshot"
	"github.com/llm-d/ghh-growth-solver/pkg/core"
	"github.com/llm-d/ghh-growth-solver/pkg/solver"
)

type solveOptions struct {
	output          string
	warmStart       string
	metricsTextfile string
}

func newSolveCommand(global *globalOptions) *cobra.Command {
	opts := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve the model and optionally write a snapshot",
		Long: `Runs value function iteration for the selected scenario and prints a
summary. The value and policy tables can be written to a YAML snapshot and
reused as a warm start.

Example:
  ghh solve --scenario deterministic --mpi --output solution.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, global, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the solution snapshot to this file")
	cmd.Flags().StringVar(&opts.warmStart, "warm-start", "", "Initialize the value table from this snapshot")
	cmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write solver metrics in Prometheus text format to this file")
	config.AddSolveFlags(cmd.Flags())
	return cmd
}

// solveSummary is printed after a successful solve.
type solveSummary struct {
	Scenario      string  `yaml:"scenario"`
	CapitalPoints int     `yaml:"capitalPoints"`
	Iterations    int     `yaml:"iterations"`
	Diff          float64 `yaml:"diff"`
	Elapsed       string  `yaml:"elapsed"`
}

func runSolve(cmd *cobra.Command, global *globalOptions, opts *solveOptions) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx, config.LoadOptions{
		Path:     global.configPath,
		Scenario: global.scenario,
		Flags:    cmd.Flags(),
	})
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewSolverMetrics(registry)
	if err != nil {
		return err
	}

	model, result, _, solveErr := solveScenario(ctx, cfg, opts.warmStart, recorder)
	if opts.metricsTextfile != "" {
		if err := metrics.WriteTextfile(opts.metricsTextfile, registry); err != nil {
			return err
		}
	}
	if solveErr != nil {
		return solveErr
	}

	if opts.output != "" {
		if err := snapshot.WriteFile(opts.output, snapshot.FromResult(cfg.Name, model, result)); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("Wrote snapshot", "path", opts.output)
	}

	return printYAML(cmd.OutOrStdout(), solveSummary{
		Scenario:      cfg.Name,
		CapitalPoints: model.Capital.Len(),
		Iterations:    result.Iterations,
		Diff:          result.Diff,
		Elapsed:       result.Elapsed.Round(time.Millisecond).String(),
	})
}

// solveScenario builds the model for cfg and runs the solver. warmStart
// optionally names a snapshot to start from.
func solveScenario(ctx context.Context, cfg *config.ScenarioConfig, warmStart string, recorder solver.Recorder) (*core.Model, *solver.Result, *solver.Solver, error) {
	model, err := cfg.NewModel()
	if err != nil {
		return nil, nil, nil, err
	}
	solverOpts := cfg.SolverOptions()
	solverOpts.Recorder = recorder

	if warmStart != "" {
		doc, err := snapshot.ReadFile(warmStart)
		if err != nil {
			return nil, nil, nil, err
		}
		solverOpts.WarmStart, err = doc.WarmStart(model)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("warm start %s: %w", warmStart, err)
		}
	}

	s, err := solver.NewSolver(model, solverOpts)
	if err != nil {
		return nil, nil, nil, err
	}
	result, err := s.Solve(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scenario %q: %w", cfg.Name, err)
	}
	return model, result, s, nil
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return enc.Close()
}
