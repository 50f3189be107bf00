package core

import (
	"fmt"
	"math"
)

// ModelParameters holds the structural constants of the model.
// It is passed by value and never mutated after construction.
type ModelParameters struct {
	// Alpha is the capital share in production.
	Alpha float64
	// Beta is the discount factor.
	Beta float64
	// Theta is the inverse Frisch elasticity of labor supply.
	Theta float64
	// Gamma is the coefficient of relative risk aversion.
	Gamma float64
	// Omega is the convexity of the utilization-driven depreciation function.
	Omega float64
	// B scales the depreciation function.
	B float64
	// A is the productivity level.
	A float64
	// Sigma is the standard deviation of the investment-specific shock.
	Sigma float64
	// Lambda is the autocorrelation of the shock process.
	Lambda float64
}

// DefaultModelParameters returns the baseline calibration.
func DefaultModelParameters() ModelParameters {
	return ModelParameters{
		Alpha:  0.330,
		Beta:   0.960,
		Theta:  1.000,
		Gamma:  2.000,
		Omega:  2.000,
		B:      0.075,
		A:      0.592,
		Sigma:  0.060,
		Lambda: 0.400,
	}
}

// Validate checks that the parameters describe a well-posed problem.
func (p ModelParameters) Validate() error {
	if p.Alpha <= 0 || p.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %g: %w", p.Alpha, ErrInvalidParameter)
	}
	if p.Beta <= 0 || p.Beta >= 1 {
		return fmt.Errorf("beta must be in (0, 1), got %g: %w", p.Beta, ErrInvalidParameter)
	}
	if p.Theta <= -1 {
		return fmt.Errorf("theta must be > -1, got %g: %w", p.Theta, ErrInvalidParameter)
	}
	if p.Gamma <= 0 {
		return fmt.Errorf("gamma must be > 0, got %g: %w", p.Gamma, ErrInvalidParameter)
	}
	if p.Omega == 0 {
		return fmt.Errorf("omega must be non-zero: %w", ErrInvalidParameter)
	}
	if p.B < 0 {
		return fmt.Errorf("B must be >= 0, got %g: %w", p.B, ErrInvalidParameter)
	}
	if p.A <= 0 {
		return fmt.Errorf("A must be > 0, got %g: %w", p.A, ErrInvalidParameter)
	}
	if p.Sigma < 0 {
		return fmt.Errorf("sigma must be >= 0, got %g: %w", p.Sigma, ErrInvalidParameter)
	}
	if p.Lambda < -1 || p.Lambda > 1 {
		return fmt.Errorf("lambda must be in [-1, 1], got %g: %w", p.Lambda, ErrInvalidParameter)
	}
	return nil
}

// Output is A·(k·h)^alpha·l^(1-alpha).
func (p ModelParameters) Output(k, h, l float64) float64 {
	return p.A * math.Pow(k*h, p.Alpha) * math.Pow(l, 1-p.Alpha)
}

// Depreciation is the utilization cost B·h^omega/omega.
func (p ModelParameters) Depreciation(h float64) float64 {
	return p.B * math.Pow(h, p.Omega) / p.Omega
}

// UndepreciatedCapital is k·(1 - depreciation(h))·exp(-eps), the capital left
// after production measured in consumption units.
func (p ModelParameters) UndepreciatedCapital(k, h, eps float64) float64 {
	return k * (1 - p.Depreciation(h)) * math.Exp(-eps)
}

// LaborDisutility is l^(1+theta)/(1+theta).
func (p ModelParameters) LaborDisutility(l float64) float64 {
	return math.Pow(l, 1+p.Theta) / (1 + p.Theta)
}

// StaticPayoff is the intra-period objective maximized over (h, l).
func (p ModelParameters) StaticPayoff(k, eps, h, l float64) float64 {
	return p.Output(k, h, l) + p.UndepreciatedCapital(k, h, eps) - p.LaborDisutility(l)
}

// Consumption returns consumption when moving from k to kNext under choice c.
func (p ModelParameters) Consumption(k, kNext, eps float64, c StaticChoice) float64 {
	return p.Output(k, c.H, c.L) - kNext*math.Exp(-eps) + p.UndepreciatedCapital(k, c.H, eps)
}

// UtilityArgument is consumption net of labor disutility, the GHH composite.
func (p ModelParameters) UtilityArgument(k, kNext, eps float64, c StaticChoice) float64 {
	return p.Consumption(k, kNext, eps, c) - p.LaborDisutility(c.L)
}

// Utility applies the CRRA transform to a strictly positive argument.
// Gamma equal to one is the logarithmic limit.
func (p ModelParameters) Utility(u float64) float64 {
	if p.Gamma == 1 {
		return math.Log(u)
	}
	return math.Pow(u, 1-p.Gamma) / (1 - p.Gamma)
}

// StaticChoice is the utilization rate and labor input chosen within a period.
type StaticChoice struct {
	H float64
	L float64
}
