package config

import (
	"errors"
	"fmt"

	"k8s.io/utils/ptr"

	"github.com/llm-d/ghh-growth-solver/pkg/core"
	"github.com/llm-d/ghh-growth-solver/pkg/solver"
)

const (
	// GlobalDefaultsKey is the top-level section holding the baseline scenario.
	GlobalDefaultsKey = "default"

	// ScenariosKey is the top-level section holding named overrides.
	ScenariosKey = "scenarios"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ModelConfig holds the structural parameters and the capital grid.
type ModelConfig struct {
	Alpha  float64 `yaml:"alpha" mapstructure:"alpha"`
	Beta   float64 `yaml:"beta" mapstructure:"beta"`
	Theta  float64 `yaml:"theta" mapstructure:"theta"`
	Gamma  float64 `yaml:"gamma" mapstructure:"gamma"`
	Omega  float64 `yaml:"omega" mapstructure:"omega"`
	B      float64 `yaml:"b" mapstructure:"b"`
	A      float64 `yaml:"a" mapstructure:"a"`
	Sigma  float64 `yaml:"sigma" mapstructure:"sigma"`
	Lambda float64 `yaml:"lambda" mapstructure:"lambda"`

	// GridPoints is the number of capital grid points.
	GridPoints int     `yaml:"gridPoints" mapstructure:"gridPoints"`
	KMin       float64 `yaml:"kMin" mapstructure:"kMin"`
	KMax       float64 `yaml:"kMax" mapstructure:"kMax"`
}

// SolveConfig holds the iteration controls.
type SolveConfig struct {
	Tolerance     float64 `yaml:"tolerance" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"maxIterations" mapstructure:"maxIterations"`
	Penalty       float64 `yaml:"penalty" mapstructure:"penalty"`

	// ModifiedPolicyIteration is a pointer so that a scenario can inherit it.
	ModifiedPolicyIteration *bool `yaml:"modifiedPolicyIteration,omitempty" mapstructure:"modifiedPolicyIteration"`
	PolicySweeps            int   `yaml:"policySweeps" mapstructure:"policySweeps"`

	HMin float64 `yaml:"hMin" mapstructure:"hMin"`
	HMax float64 `yaml:"hMax" mapstructure:"hMax"`
	LMin float64 `yaml:"lMin" mapstructure:"lMin"`
	LMax float64 `yaml:"lMax" mapstructure:"lMax"`

	// StaticGridPoints of 0 reuses the capital grid size.
	StaticGridPoints   int   `yaml:"staticGridPoints" mapstructure:"staticGridPoints"`
	Workers            int   `yaml:"workers" mapstructure:"workers"`
	ReuseStaticChoices *bool `yaml:"reuseStaticChoices,omitempty" mapstructure:"reuseStaticChoices"`
}

// ScenarioConfig is one fully resolved parameter vector plus solve controls.
type ScenarioConfig struct {
	// Name is the scenario the values were resolved for.
	Name  string      `yaml:"-" mapstructure:"-"`
	Model ModelConfig `yaml:"model" mapstructure:"model"`
	Solve SolveConfig `yaml:"solve" mapstructure:"solve"`
}

// Defaults returns the baseline calibration and solve controls.
func Defaults() ScenarioConfig {
	p := core.DefaultModelParameters()
	o := solver.DefaultOptions()
	return ScenarioConfig{
		Name: GlobalDefaultsKey,
		Model: ModelConfig{
			Alpha:      p.Alpha,
			Beta:       p.Beta,
			Theta:      p.Theta,
			Gamma:      p.Gamma,
			Omega:      p.Omega,
			B:          p.B,
			A:          p.A,
			Sigma:      p.Sigma,
			Lambda:     p.Lambda,
			GridPoints: 100,
			KMin:       0,
			KMax:       5,
		},
		Solve: SolveConfig{
			Tolerance:               o.Tolerance,
			MaxIterations:           o.MaxIterations,
			Penalty:                 o.Penalty,
			ModifiedPolicyIteration: ptr.To(false),
			PolicySweeps:            o.PolicySweeps,
			HMin:                    o.Search.HMin,
			HMax:                    o.Search.HMax,
			LMin:                    o.Search.LMin,
			LMax:                    o.Search.LMax,
			ReuseStaticChoices:      ptr.To(false),
		},
	}
}

// Validate checks for invalid configuration values.
func (c *ScenarioConfig) Validate() error {
	if err := c.Parameters().Validate(); err != nil {
		return fmt.Errorf("%w: model: %w", ErrInvalidConfig, err)
	}
	m, s := c.Model, c.Solve
	if m.GridPoints < 2 {
		return fmt.Errorf("%w: gridPoints must be >= 2, got %d", ErrInvalidConfig, m.GridPoints)
	}
	if m.KMin < 0 {
		return fmt.Errorf("%w: kMin must be >= 0, got %g", ErrInvalidConfig, m.KMin)
	}
	if m.KMax <= m.KMin {
		return fmt.Errorf("%w: kMax (%g) must be > kMin (%g)", ErrInvalidConfig, m.KMax, m.KMin)
	}
	if !(s.Tolerance > 0) {
		return fmt.Errorf("%w: tolerance must be > 0, got %g", ErrInvalidConfig, s.Tolerance)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("%w: maxIterations must be > 0, got %d", ErrInvalidConfig, s.MaxIterations)
	}
	if s.Penalty >= 0 {
		return fmt.Errorf("%w: penalty must be < 0, got %g", ErrInvalidConfig, s.Penalty)
	}
	if ptr.Deref(s.ModifiedPolicyIteration, false) && s.PolicySweeps < 1 {
		return fmt.Errorf("%w: policySweeps must be >= 1 with modified policy iteration, got %d",
			ErrInvalidConfig, s.PolicySweeps)
	}
	if s.HMin < 0 || s.HMax <= s.HMin {
		return fmt.Errorf("%w: utilization bounds [%g, %g] must be ordered and non-negative",
			ErrInvalidConfig, s.HMin, s.HMax)
	}
	if s.LMin < 0 || s.LMax <= s.LMin {
		return fmt.Errorf("%w: labor bounds [%g, %g] must be ordered and non-negative",
			ErrInvalidConfig, s.LMin, s.LMax)
	}
	if s.StaticGridPoints != 0 && s.StaticGridPoints < 2 {
		return fmt.Errorf("%w: staticGridPoints must be 0 or >= 2, got %d", ErrInvalidConfig, s.StaticGridPoints)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, s.Workers)
	}
	return nil
}

// Parameters converts the model section to core.ModelParameters.
func (c *ScenarioConfig) Parameters() core.ModelParameters {
	m := c.Model
	return core.ModelParameters{
		Alpha:  m.Alpha,
		Beta:   m.Beta,
		Theta:  m.Theta,
		Gamma:  m.Gamma,
		Omega:  m.Omega,
		B:      m.B,
		A:      m.A,
		Sigma:  m.Sigma,
		Lambda: m.Lambda,
	}
}

// NewModel builds the discretized model described by the configuration.
func (c *ScenarioConfig) NewModel() (*core.Model, error) {
	return core.NewModel(c.Parameters(), c.Model.KMin, c.Model.KMax, c.Model.GridPoints)
}

// SolverOptions converts the solve section to solver.Options.
// The recorder and warm start are left for the caller.
func (c *ScenarioConfig) SolverOptions() solver.Options {
	s := c.Solve
	return solver.Options{
		Tolerance:               s.Tolerance,
		MaxIterations:           s.MaxIterations,
		Penalty:                 s.Penalty,
		ModifiedPolicyIteration: ptr.Deref(s.ModifiedPolicyIteration, false),
		PolicySweeps:            s.PolicySweeps,
		Search: solver.SearchBounds{
			HMin: s.HMin,
			HMax: s.HMax,
			LMin: s.LMin,
			LMax: s.LMax,
		},
		StaticGridPoints:   s.StaticGridPoints,
		ReuseStaticChoices: ptr.Deref(s.ReuseStaticChoices, false),
		Workers:            s.Workers,
	}
}
