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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/llm-d/ghh-growth-solver/internal/logging"
)

const (
	// DefaultFREDBaseURL is the FRED series observations endpoint.
	DefaultFREDBaseURL = "https://api.stlouisfed.org/fred/series/observations"

	fredDateLayout   = "2006-01-02"
	fredMissingValue = "."
)

// FREDSource fetches series from the FRED observations API.
type FREDSource struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	initial  time.Duration
	maxTries uint
}

var _ SeriesSource = (*FREDSource)(nil)

// FREDOption configures a FREDSource.
type FREDOption func(*FREDSource)

// WithBaseURL overrides the observations endpoint.
func WithBaseURL(u string) FREDOption {
	return func(s *FREDSource) { s.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) FREDOption {
	return func(s *FREDSource) { s.client = c }
}

// WithRetry sets the first backoff interval and the maximum number of attempts.
func WithRetry(initial time.Duration, maxTries uint) FREDOption {
	return func(s *FREDSource) {
		s.initial = initial
		s.maxTries = maxTries
	}
}

// NewFREDSource creates a source authenticated with apiKey.
func NewFREDSource(apiKey string, opts ...FREDOption) (*FREDSource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("fred api key is required")
	}
	s := &FREDSource{
		apiKey:   apiKey,
		baseURL:  DefaultFREDBaseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		initial:  backoff.DefaultInitialInterval,
		maxTries: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FREDSource) Name() string {
	return "fred"
}

type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Fetch retrieves all observations of the series. Server errors and 429
// responses are retried; other client errors are returned immediately.
func (s *FREDSource) Fetch(ctx context.Context, id string) (*TimeSeries, error) {
	logger := logging.FromContext(ctx).WithValues("source", s.Name(), "series", id)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.initial

	operation := func() (*TimeSeries, error) {
		return s.fetchOnce(ctx, id)
	}
	ts, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(s.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.V(logging.DEBUG).Info("Retrying series fetch", "error", err.Error(), "after", next)
		}))
	if err != nil {
		return nil, err
	}
	logger.V(logging.DEBUG).Info("Fetched series", "observations", ts.Len())
	return ts, nil
}

func (s *FREDSource) fetchOnce(ctx context.Context, id string) (*TimeSeries, error) {
	q := url.Values{}
	q.Set("series_id", id)
	q.Set("api_key", s.apiKey)
	q.Set("file_type", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request for %s: %w", id, err))
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request for %s failed: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("fred returned %d for %s", resp.StatusCode, id)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, backoff.Permanent(fmt.Errorf("fred returned %d for %s (%s): %w",
			resp.StatusCode, id, string(body), ErrSeriesNotFound))
	default:
		return nil, backoff.Permanent(fmt.Errorf("fred returned %d for %s", resp.StatusCode, id))
	}

	var payload fredResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode observations for %s: %w", id, err))
	}

	ts := NewTimeSeries(id)
	for _, o := range payload.Observations {
		if o.Value == fredMissingValue {
			continue
		}
		date, err := time.Parse(fredDateLayout, o.Date)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("series %s has invalid date %q: %w", id, o.Date, err))
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("series %s has invalid value %q on %s: %w", id, o.Value, o.Date, err))
		}
		ts.AddPoint(date, v)
	}
	ts.Sort()
	return ts, nil
}
