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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/llm-d/ghh-growth-solver/internal/logging"
)

// CSVSource reads "<dir>/<id>.csv" files with date,value rows. A header row
// and missing values ("." or empty) are skipped.
type CSVSource struct {
	dir string
}

var _ SeriesSource = (*CSVSource)(nil)

// NewCSVSource creates a source rooted at dir.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

func (s *CSVSource) Name() string {
	return "csv"
}

func (s *CSVSource) Fetch(ctx context.Context, id string) (*TimeSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, id+".csv")
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrSeriesNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	ts := NewTimeSeries(id)
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		date, err := time.Parse(fredDateLayout, strings.TrimSpace(record[0]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("%s:%d: invalid date %q: %w", path, line, record[0], err)
		}
		raw := strings.TrimSpace(record[1])
		if raw == "" || raw == fredMissingValue {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid value %q: %w", path, line, raw, err)
		}
		ts.AddPoint(date, v)
	}
	ts.Sort()

	logging.FromContext(ctx).V(logging.DEBUG).Info("Read series", "source", s.Name(), "series", id, "observations", ts.Len())
	return ts, nil
}
