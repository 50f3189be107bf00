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
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DefaultHPLambda is the smoothing parameter for quarterly data.
const DefaultHPLambda = 1600

// HPFilter splits y into cycle and trend with the Hodrick-Prescott filter.
// The trend solves (I + lambda·DᵀD)·trend = y, where D is the second
// difference operator, and cycle = y - trend.
func HPFilter(y []float64, lambda float64) (cycle, trend []float64, err error) {
	n := len(y)
	if n < 3 {
		return nil, nil, fmt.Errorf("hp filter needs at least 3 observations, got %d: %w", n, ErrSeriesTooShort)
	}
	if lambda < 0 {
		return nil, nil, fmt.Errorf("hp filter lambda must be >= 0, got %g", lambda)
	}

	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		a.SetSym(i, i, 1)
	}
	diff := [3]float64{1, -2, 1}
	for r := 0; r+2 < n; r++ {
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				a.SetSym(r+i, r+j, a.At(r+i, r+j)+lambda*diff[i]*diff[j])
			}
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, nil, errors.New("hp filter system is not positive definite")
	}
	tv := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(tv, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, nil, fmt.Errorf("hp filter solve failed: %w", err)
	}

	trend = make([]float64, n)
	cycle = make([]float64, n)
	for i := range y {
		trend[i] = tv.AtVec(i)
		cycle[i] = y[i] - trend[i]
	}
	return cycle, trend, nil
}

// Cycle applies HPFilter to a series and returns the cyclical component
// on the same dates.
func Cycle(ts *TimeSeries, lambda float64) (*TimeSeries, error) {
	cycle, _, err := HPFilter(ts.Values(), lambda)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", ts.ID, err)
	}
	return ts.WithValues(cycle), nil
}
