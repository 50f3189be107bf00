package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/utils/ptr"

	"github.com/llm-d/ghh-growth-solver/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. GHH_DEFAULT_MODEL_SIGMA.
const EnvPrefix = "GHH"

// Flag names registered by AddSolveFlags.
const (
	FlagTolerance          = "tolerance"
	FlagMaxIterations      = "max-iterations"
	FlagMPI                = "mpi"
	FlagPolicySweeps       = "policy-sweeps"
	FlagWorkers            = "workers"
	FlagGridPoints         = "grid-points"
	FlagReuseStaticChoices = "reuse-static-choices"
)

// flagKeys maps command-line flags to keys inside a scenario section.
var flagKeys = map[string]string{
	FlagTolerance:          "solve.tolerance",
	FlagMaxIterations:      "solve.maxIterations",
	FlagMPI:                "solve.modifiedPolicyIteration",
	FlagPolicySweeps:       "solve.policySweeps",
	FlagWorkers:            "solve.workers",
	FlagGridPoints:         "model.gridPoints",
	FlagReuseStaticChoices: "solve.reuseStaticChoices",
}

// LoadOptions selects where configuration comes from.
type LoadOptions struct {
	// Path is an optional YAML file.
	Path string
	// Scenario names an entry under "scenarios"; empty or "default" uses the baseline.
	Scenario string
	// Flags holds command-line overrides registered with AddSolveFlags.
	// Only flags set explicitly take effect.
	Flags *pflag.FlagSet
}

// AddSolveFlags registers the solve overrides on fs.
func AddSolveFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.Float64(FlagTolerance, d.Solve.Tolerance, "Sup-norm convergence tolerance")
	fs.Int(FlagMaxIterations, d.Solve.MaxIterations, "Maximum number of Bellman sweeps")
	fs.Bool(FlagMPI, false, "Enable modified policy iteration")
	fs.Int(FlagPolicySweeps, d.Solve.PolicySweeps, "Refinement sweeps per modified policy iteration pass")
	fs.Int(FlagWorkers, 0, "Goroutines per sweep (0 uses GOMAXPROCS)")
	fs.Int(FlagGridPoints, d.Model.GridPoints, "Number of capital grid points")
	fs.Bool(FlagReuseStaticChoices, false, "Solve the static problem once per state")
}

// Load resolves a scenario: built-in defaults, then the file's default
// section, then GHH_ environment variables, then the named scenario, then
// explicitly set flags. The result is validated.
func Load(ctx context.Context, opts LoadOptions) (*ScenarioConfig, error) {
	logger := logging.FromContext(ctx)

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Defaults())

	if opts.Path != "" {
		v.SetConfigFile(opts.Path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.Path, err)
		}
		logger.V(logging.DEBUG).Info("Read configuration file", "path", opts.Path)
	}

	var doc struct {
		Default ScenarioConfig `mapstructure:"default"`
	}
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode default section: %w", err)
	}
	cfg := doc.Default
	cfg.Name = GlobalDefaultsKey

	if name := opts.Scenario; name != "" && name != GlobalDefaultsKey {
		key := ScenariosKey + "." + name
		sub := v.Sub(key)
		if sub == nil {
			return nil, fmt.Errorf("%w: unknown scenario %q", ErrInvalidConfig, name)
		}
		if err := sub.Unmarshal(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode scenario %q: %w", name, err)
		}
		cfg.Name = name
	}

	if opts.Flags != nil {
		if err := applyFlags(&cfg, opts.Flags); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", cfg.Name, err)
	}

	logger.V(logging.DEBUG).Info("Resolved configuration",
		"scenario", cfg.Name,
		"gridPoints", cfg.Model.GridPoints,
		"sigma", cfg.Model.Sigma,
		"lambda", cfg.Model.Lambda,
		"tolerance", cfg.Solve.Tolerance,
		"modifiedPolicyIteration", ptr.Deref(cfg.Solve.ModifiedPolicyIteration, false))
	return &cfg, nil
}

// applyFlags decodes the explicitly changed flags onto cfg.
func applyFlags(cfg *ScenarioConfig, fs *pflag.FlagSet) error {
	overrides := viper.New()
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides.Set(key, f.Value.String())
		}
	})
	if len(overrides.AllKeys()) == 0 {
		return nil
	}
	if err := overrides.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to apply command-line overrides: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d ScenarioConfig) {
	set := func(key string, value any) {
		v.SetDefault(GlobalDefaultsKey+"."+key, value)
	}
	m, s := d.Model, d.Solve

	set("model.alpha", m.Alpha)
	set("model.beta", m.Beta)
	set("model.theta", m.Theta)
	set("model.gamma", m.Gamma)
	set("model.omega", m.Omega)
	set("model.b", m.B)
	set("model.a", m.A)
	set("model.sigma", m.Sigma)
	set("model.lambda", m.Lambda)
	set("model.gridPoints", m.GridPoints)
	set("model.kMin", m.KMin)
	set("model.kMax", m.KMax)

	set("solve.tolerance", s.Tolerance)
	set("solve.maxIterations", s.MaxIterations)
	set("solve.penalty", s.Penalty)
	set("solve.modifiedPolicyIteration", ptr.Deref(s.ModifiedPolicyIteration, false))
	set("solve.policySweeps", s.PolicySweeps)
	set("solve.hMin", s.HMin)
	set("solve.hMax", s.HMax)
	set("solve.lMin", s.LMin)
	set("solve.lMax", s.LMax)
	set("solve.staticGridPoints", s.StaticGridPoints)
	set("solve.workers", s.Workers)
	set("solve.reuseStaticChoices", ptr.Deref(s.ReuseStaticChoices, false))
}
