package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/llm-d/ghh-growth-solver/internal/collector"
)

// defaultTickers are FRED series for the model variables. Productivity has
// no default series.
var defaultTickers = map[string]string{
	collector.SeriesOutput:      "GDPC1",
	collector.SeriesConsumption: "PCECC96",
	collector.SeriesInvestment:  "GPDIC1",
	collector.SeriesLabor:       "HOANBS",
	collector.SeriesUtilization: "TCU",
}

type momentsOptions struct {
	source  string
	csvDir  string
	apiKey  string
	tickers map[string]string
	lambda  float64
}

func newMomentsCommand() *cobra.Command {
	opts := &momentsOptions{}
	cmd := &cobra.Command{
		Use:   "moments",
		Short: "Print empirical business-cycle moments",
		Long: `Fetches one series per model variable, converts monthly data to
quarterly averages, takes logs, applies the Hodrick-Prescott filter and prints
the moments of the cyclical components.

Examples:
  ghh moments --api-key $FRED_API_KEY
  ghh moments --source csv --csv-dir ./data --ticker Y=GDP --ticker C=PCE`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMoments(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", "fred", "Series source: fred or csv")
	cmd.Flags().StringVar(&opts.csvDir, "csv-dir", ".", "Directory of <id>.csv files for the csv source")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "FRED API key (or set FRED_API_KEY env)")
	cmd.Flags().StringToStringVar(&opts.tickers, "ticker", nil, "Series id for a variable as NAME=ID; repeats override the defaults")
	cmd.Flags().Float64Var(&opts.lambda, "hp-lambda", collector.DefaultHPLambda, "Hodrick-Prescott smoothing parameter")
	return cmd
}

func runMoments(cmd *cobra.Command, opts *momentsOptions) error {
	var source collector.SeriesSource
	switch opts.source {
	case "fred":
		key := opts.apiKey
		if key == "" {
			key = os.Getenv("FRED_API_KEY")
		}
		fred, err := collector.NewFREDSource(key)
		if err != nil {
			return err
		}
		source = fred
	case "csv":
		source = collector.NewCSVSource(opts.csvDir)
	default:
		return fmt.Errorf("unknown source %q, want fred or csv", opts.source)
	}

	tickers := make(map[string]string, len(defaultTickers))
	for name, id := range defaultTickers {
		tickers[name] = id
	}
	for name, id := range opts.tickers {
		tickers[name] = id
	}

	provider, err := collector.NewProvider(source, collector.ProviderOptions{
		Tickers: tickers,
		Lambda:  opts.lambda,
	})
	if err != nil {
		return err
	}
	moments, err := provider.Collect(cmd.Context())
	if err != nil {
		return err
	}
	return printMoments(cmd.OutOrStdout(), moments)
}

// momentsRow is one printed variable in reporting order.
type momentsRow struct {
	Variable          string `yaml:"variable"`
	collector.Moments `yaml:",inline"`
}

func printMoments(w io.Writer, moments map[string]collector.Moments) error {
	rows := make([]momentsRow, 0, len(collector.SeriesNames))
	for _, name := range collector.SeriesNames {
		rows = append(rows, momentsRow{Variable: name, Moments: moments[name]})
	}
	return printYAML(w, rows)
}
