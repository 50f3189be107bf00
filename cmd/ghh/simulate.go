package main

import (
	"github.com/spf13/cobra"

	"github.com/llm-d/ghh-growth-solver/internal/analysis"
	"github.com/llm-d/ghh-growth-solver/internal/collector"
	"github.com/llm-d/ghh-growth-solver/internal/config"
	"github.com/llm-d/ghh-growth-solver/pkg/solver"
)

type simulateOptions struct {
	periods int
	burnIn  int
	seed    uint64
	lambda  float64
}

func newSimulateCommand(global *globalOptions) *cobra.Command {
	opts := &simulateOptions{}
	defaults := analysis.DefaultSimulationOptions()
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Solve the model and print simulated business-cycle moments",
		Long: `Solves the selected scenario, simulates the economy under the policy
function and prints the standard deviation, correlation with output and
first-order autocorrelation of each HP-filtered log series.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, global, opts)
		},
	}
	cmd.Flags().IntVar(&opts.periods, "periods", defaults.Periods, "Number of recorded quarters")
	cmd.Flags().IntVar(&opts.burnIn, "burn-in", defaults.BurnIn, "Number of initial quarters to discard")
	cmd.Flags().Uint64Var(&opts.seed, "seed", defaults.Seed, "Seed for the shock path")
	cmd.Flags().Float64Var(&opts.lambda, "hp-lambda", collector.DefaultHPLambda, "Hodrick-Prescott smoothing parameter")
	config.AddSolveFlags(cmd.Flags())
	return cmd
}

func runSimulate(cmd *cobra.Command, global *globalOptions, opts *simulateOptions) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx, config.LoadOptions{
		Path:     global.configPath,
		Scenario: global.scenario,
		Flags:    cmd.Flags(),
	})
	if err != nil {
		return err
	}

	model, result, s, err := solveScenario(ctx, cfg, "", nil)
	if err != nil {
		return err
	}

	simOpts := analysis.DefaultSimulationOptions()
	simOpts.Periods = opts.periods
	simOpts.BurnIn = opts.burnIn
	simOpts.Seed = opts.seed
	sim, err := analysis.Simulate(ctx, model, solver.NewOnDemandStaticPolicy(model, s.StaticSolver()), result.Policy, simOpts)
	if err != nil {
		return err
	}
	return printMoments(cmd.OutOrStdout(), analysis.ModelMoments(sim, opts.lambda))
}
