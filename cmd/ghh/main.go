// Command ghh solves the GHH growth model with endogenous capital
// utilization and compares model-implied business-cycle moments with data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llm-d/ghh-growth-solver/internal/config"
	"github.com/llm-d/ghh-growth-solver/internal/logging"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	scenario   string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "ghh",
		Short: "Solve the GHH growth model by value function iteration",
		Long: `ghh discretizes a stochastic growth model with GHH preferences,
endogenous capital utilization and an investment-specific shock, and solves
it by value function iteration with optional modified policy iteration.

Configuration is read from built-in defaults, an optional YAML file, GHH_
environment variables and command-line flags, in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewLogger(logging.Options{Level: opts.logLevel, Format: opts.logFormat})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logging.SetLogger(logger)
			cmd.SetContext(logging.IntoContext(cmd.Context(), logger))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&opts.scenario, "scenario", config.GlobalDefaultsKey, "Scenario to resolve from the configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log verbosity: info, debug or trace")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "Log encoding: console or json")

	root.AddCommand(newSolveCommand(opts))
	root.AddCommand(newSimulateCommand(opts))
	root.AddCommand(newMomentsCommand())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
