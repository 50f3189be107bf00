/*
Copyright 2025 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package collector

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Moments summarizes the cyclical component of one variable.
type Moments struct {
	// StdDev is the sample standard deviation.
	StdDev float64 `json:"stdDev" yaml:"stdDev"`
	// Correlation is the correlation with the reference cycle on common dates.
	Correlation float64 `json:"correlation" yaml:"correlation"`
	// Autocorrelation is the first-order autocorrelation.
	Autocorrelation float64 `json:"autocorrelation" yaml:"autocorrelation"`
}

// MissingMoments reports a variable that has no data.
func MissingMoments() Moments {
	return Moments{StdDev: math.NaN(), Correlation: math.NaN(), Autocorrelation: math.NaN()}
}

// ComputeMoments computes the moments of cycle against reference.
// A nil reference yields a NaN correlation.
func ComputeMoments(cycle, reference *TimeSeries) Moments {
	if cycle == nil || cycle.Len() == 0 {
		return MissingMoments()
	}
	values := cycle.Values()
	m := Moments{
		StdDev:          math.NaN(),
		Correlation:     math.NaN(),
		Autocorrelation: Autocorrelation(values),
	}
	if len(values) >= 2 {
		m.StdDev = stat.StdDev(values, nil)
	}
	if reference != nil {
		xs, ys := Align(cycle, reference)
		if len(xs) >= 2 {
			m.Correlation = stat.Correlation(xs, ys, nil)
		}
	}
	return m
}

// Autocorrelation returns the Pearson correlation between x[t] and x[t-1].
func Autocorrelation(x []float64) float64 {
	if len(x) < 3 {
		return math.NaN()
	}
	return stat.Correlation(x[1:], x[:len(x)-1], nil)
}
