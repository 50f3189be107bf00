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

// Package metrics exposes the progress of value function iteration as
// Prometheus collectors.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/llm-d/ghh-growth-solver/pkg/solver"
)

const namespace = "ghh_solver"

// SolverMetrics implements solver.Recorder.
type SolverMetrics struct {
	sweeps           prometheus.Counter
	refinementSweeps prometheus.Counter
	supNormDiff      prometheus.Gauge
	solveDuration    prometheus.Histogram
	solves           *prometheus.CounterVec
}

var _ solver.Recorder = (*SolverMetrics)(nil)

// NewSolverMetrics creates the collectors and registers them with reg.
func NewSolverMetrics(reg prometheus.Registerer) (*SolverMetrics, error) {
	m := &SolverMetrics{
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Bellman sweeps performed.",
		}),
		refinementSweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refinement_sweeps_total",
			Help:      "Fixed-policy refinement sweeps performed by modified policy iteration.",
		}),
		supNormDiff: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sup_norm_diff",
			Help:      "Sup-norm change of the value table on the latest sweep.",
		}),
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock duration of complete solves.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Completed solves by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.sweeps, m.refinementSweeps, m.supNormDiff, m.solveDuration, m.solves} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register solver metric: %w", err)
		}
	}
	return m, nil
}

func (m *SolverMetrics) ObserveSweep(diff float64) {
	m.sweeps.Inc()
	m.supNormDiff.Set(diff)
}

func (m *SolverMetrics) ObserveRefinement(sweeps int) {
	m.refinementSweeps.Add(float64(sweeps))
}

func (m *SolverMetrics) ObserveSolve(outcome solver.Outcome, elapsed time.Duration) {
	m.solves.WithLabelValues(string(outcome)).Inc()
	m.solveDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
