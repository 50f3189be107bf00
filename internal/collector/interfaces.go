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
	"errors"
)

var (
	// ErrSeriesNotFound is returned when a source has no series with the requested id.
	ErrSeriesNotFound = errors.New("series not found")

	// ErrSeriesTooShort is returned when a series has too few observations to filter.
	ErrSeriesTooShort = errors.New("series too short")
)

// SeriesSource is the interface for pluggable time-series sources.
// Implementations include FREDSource and CSVSource.
type SeriesSource interface {
	// Name returns the unique name of this source (e.g., "fred", "csv").
	Name() string

	// Fetch returns the full history of the series with the given id in
	// chronological order.
	Fetch(ctx context.Context, id string) (*TimeSeries, error)
}

// SeriesCacheReader provides read-only access to fetched series.
type SeriesCacheReader interface {
	// Get returns a copy of the cached series, or false when it is absent or stale.
	Get(key string) (*TimeSeries, bool)
}

// SeriesCacheWriter provides write access to fetched series.
type SeriesCacheWriter interface {
	// Put stores a copy of the series under key.
	Put(key string, ts *TimeSeries)

	// Prune removes entries older than the TTL.
	Prune()
}
