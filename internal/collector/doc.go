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

// Package collector computes empirical business-cycle moments from
// macroeconomic time series.
//
// The collector fetches one series per model variable, brings every series
// to a quarterly frequency, takes logs and extracts the cyclical component
// with the Hodrick-Prescott filter. Moments of the cyclical components are
// then compared against the moments implied by the solved model.
//
// # Architecture
//
// A Provider owns a SeriesSource and a TTL cache:
//
//	source, err := collector.NewFREDSource(apiKey)
//	provider, err := collector.NewProvider(source, collector.ProviderOptions{
//		Tickers: map[string]string{
//			collector.SeriesOutput:      "GDPC1",
//			collector.SeriesConsumption: "PCECC96",
//		},
//	})
//	moments, err := provider.Collect(ctx)
//
// # Sources
//
//   - FREDSource: FRED observations API over HTTP. Missing observations
//     (".") are skipped. Server errors and throttling are retried with
//     exponential backoff; other 4xx responses fail immediately.
//   - CSVSource: one "<id>.csv" file per series with date,value rows.
//
// # Processing
//
// Every series goes through the same pipeline:
//
//  1. IsMonthly detects sub-quarterly data from the first three dates.
//  2. ResampleQuarterly averages observations within each calendar quarter.
//     Quarters are labelled by their first day.
//  3. Log takes natural logs and drops non-positive observations.
//  4. HPFilter splits the log series into trend and cycle (lambda 1600).
//
// # Moments
//
// For each variable the Provider reports the sample standard deviation of
// the cycle, its correlation with the output cycle on common dates, and its
// first-order autocorrelation. A variable without a ticker reports NaN for
// all three.
//
// # Error Handling
//
//   - ErrSeriesNotFound: the source has no series with the requested id.
//   - ErrSeriesTooShort: fewer observations than the filter needs.
package collector
