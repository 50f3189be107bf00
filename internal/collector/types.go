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
	"sort"
	"time"
)

// DataPoint represents a single observation.
type DataPoint struct {
	// Date is the start of the observation period.
	Date time.Time

	// Value is the observed level.
	Value float64
}

// TimeSeries represents a sequence of observations in chronological order.
// Note: This type is not thread-safe. The cache hands out clones.
type TimeSeries struct {
	// ID is the source identifier (e.g., the FRED series id).
	ID string

	// Points are the observations in chronological order.
	Points []DataPoint
}

// NewTimeSeries creates an empty series with the given id.
func NewTimeSeries(id string) *TimeSeries {
	return &TimeSeries{
		ID:     id,
		Points: make([]DataPoint, 0),
	}
}

// AddPoint appends an observation.
func (ts *TimeSeries) AddPoint(date time.Time, value float64) {
	ts.Points = append(ts.Points, DataPoint{
		Date:  date,
		Value: value,
	})
}

// Len returns the number of observations.
func (ts *TimeSeries) Len() int {
	return len(ts.Points)
}

// Values returns the observed values in order.
func (ts *TimeSeries) Values() []float64 {
	out := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		out[i] = p.Value
	}
	return out
}

// Latest returns the most recent observation, or nil if empty.
func (ts *TimeSeries) Latest() *DataPoint {
	if len(ts.Points) == 0 {
		return nil
	}
	return &ts.Points[len(ts.Points)-1]
}

// Sort orders the observations by date.
func (ts *TimeSeries) Sort() {
	sort.SliceStable(ts.Points, func(i, j int) bool {
		return ts.Points[i].Date.Before(ts.Points[j].Date)
	})
}

// Clone returns a deep copy.
func (ts *TimeSeries) Clone() *TimeSeries {
	out := &TimeSeries{ID: ts.ID, Points: make([]DataPoint, len(ts.Points))}
	copy(out.Points, ts.Points)
	return out
}

// WithValues returns a series with the same dates and the given values.
func (ts *TimeSeries) WithValues(values []float64) *TimeSeries {
	out := &TimeSeries{ID: ts.ID, Points: make([]DataPoint, len(ts.Points))}
	for i, p := range ts.Points {
		out.Points[i] = DataPoint{Date: p.Date, Value: values[i]}
	}
	return out
}

// Log returns the natural log of the series. Observations whose log is not
// finite are dropped.
func (ts *TimeSeries) Log() *TimeSeries {
	out := NewTimeSeries(ts.ID)
	for _, p := range ts.Points {
		v := math.Log(p.Value)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.AddPoint(p.Date, v)
	}
	return out
}

// QuarterStart returns the first day of the calendar quarter containing t.
func QuarterStart(t time.Time) time.Time {
	month := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}

// IsMonthly reports whether the series is observed more often than
// quarterly: the first and second, or second and third, observations fall in
// the same quarter.
func (ts *TimeSeries) IsMonthly() bool {
	if len(ts.Points) < 2 {
		return false
	}
	q := func(i int) time.Time { return QuarterStart(ts.Points[i].Date) }
	if q(0).Equal(q(1)) {
		return true
	}
	return len(ts.Points) >= 3 && q(1).Equal(q(2))
}

// ResampleQuarterly averages the observations within each calendar quarter.
// Quarters without observations are omitted.
func (ts *TimeSeries) ResampleQuarterly() *TimeSeries {
	out := NewTimeSeries(ts.ID)
	var (
		current time.Time
		sum     float64
		count   int
	)
	flush := func() {
		if count > 0 {
			out.AddPoint(current, sum/float64(count))
		}
	}
	for _, p := range ts.Points {
		q := QuarterStart(p.Date)
		if count > 0 && !q.Equal(current) {
			flush()
			sum, count = 0, 0
		}
		current = q
		sum += p.Value
		count++
	}
	flush()
	return out
}

// Align returns the values of a and b on the dates present in both.
func Align(a, b *TimeSeries) ([]float64, []float64) {
	index := make(map[int64]float64, len(b.Points))
	for _, p := range b.Points {
		index[p.Date.Unix()] = p.Value
	}
	var xs, ys []float64
	for _, p := range a.Points {
		if v, ok := index[p.Date.Unix()]; ok {
			xs = append(xs, p.Value)
			ys = append(ys, v)
		}
	}
	return xs, ys
}
