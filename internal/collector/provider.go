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
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/llm-d/ghh-growth-solver/internal/logging"
)

// Model variable names used as Provider keys.
const (
	SeriesOutput       = "Y"
	SeriesConsumption  = "C"
	SeriesInvestment   = "I"
	SeriesLabor        = "L"
	SeriesProductivity = "A"
	SeriesUtilization  = "H"
)

// SeriesNames lists the model variables in reporting order.
var SeriesNames = []string{
	SeriesOutput,
	SeriesConsumption,
	SeriesInvestment,
	SeriesLabor,
	SeriesProductivity,
	SeriesUtilization,
}

// DefaultCacheTTL is how long fetched series are reused.
const DefaultCacheTTL = time.Hour

// ProviderOptions configures a Provider.
type ProviderOptions struct {
	// Tickers maps a variable name to a source series id. Variables without
	// a ticker report NaN moments.
	Tickers map[string]string

	// Reference is the variable other cycles are correlated with. Defaults to Y.
	Reference string

	// Lambda is the HP smoothing parameter. Zero means DefaultHPLambda.
	Lambda float64

	// CacheTTL defaults to DefaultCacheTTL; negative disables caching.
	CacheTTL time.Duration
}

// Provider turns raw series into business-cycle moments.
type Provider struct {
	source SeriesSource
	opts   ProviderOptions
	cache  *SeriesCache
}

// NewProvider creates a provider reading from source.
func NewProvider(source SeriesSource, opts ProviderOptions) (*Provider, error) {
	if source == nil {
		return nil, fmt.Errorf("series source cannot be nil")
	}
	if opts.Reference == "" {
		opts.Reference = SeriesOutput
	}
	if opts.Lambda == 0 {
		opts.Lambda = DefaultHPLambda
	}
	if opts.Lambda < 0 {
		return nil, fmt.Errorf("hp lambda must be >= 0, got %g", opts.Lambda)
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Provider{
		source: source,
		opts:   opts,
		cache:  NewSeriesCache(opts.CacheTTL),
	}, nil
}

// Cycle fetches the series for one variable and returns its cyclical
// component: resampled to quarterly if needed, logged, then HP filtered.
// It returns nil without error when the variable has no ticker.
func (p *Provider) Cycle(ctx context.Context, name string) (*TimeSeries, error) {
	id, ok := p.opts.Tickers[name]
	if !ok || id == "" {
		return nil, nil
	}
	raw, err := p.fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	return CycleOf(raw, p.opts.Lambda)
}

// CycleOf applies the quarterly, log and HP filter pipeline to a raw series.
func CycleOf(raw *TimeSeries, lambda float64) (*TimeSeries, error) {
	ts := raw
	if ts.IsMonthly() {
		ts = ts.ResampleQuarterly()
	}
	return Cycle(ts.Log(), lambda)
}

// Collect computes moments for every variable in SeriesNames. Series are
// fetched concurrently.
func (p *Provider) Collect(ctx context.Context) (map[string]Moments, error) {
	logger := logging.FromContext(ctx).WithName("collector")

	cycles := make([]*TimeSeries, len(SeriesNames))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range SeriesNames {
		g.Go(func() error {
			c, err := p.Cycle(gctx, name)
			if err != nil {
				return err
			}
			cycles[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var reference *TimeSeries
	for i, name := range SeriesNames {
		if name == p.opts.Reference {
			reference = cycles[i]
		}
	}

	out := make(map[string]Moments, len(SeriesNames))
	for i, name := range SeriesNames {
		if cycles[i] == nil {
			out[name] = MissingMoments()
			continue
		}
		out[name] = ComputeMoments(cycles[i], reference)
	}
	logger.Info("Collected empirical moments", "source", p.source.Name(), "variables", len(p.opts.Tickers))
	return out, nil
}

func (p *Provider) fetch(ctx context.Context, id string) (*TimeSeries, error) {
	key := p.source.Name() + ":" + id
	if ts, ok := p.cache.Get(key); ok {
		logging.FromContext(ctx).V(logging.TRACE).Info("Series cache hit", "key", key)
		return ts, nil
	}
	ts, err := p.source.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	p.cache.Put(key, ts)
	p.cache.Prune()
	return ts, nil
}
