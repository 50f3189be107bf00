// Package snapshot persists solver results as YAML documents that can be
// read back as warm starts.
package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/llm-d/ghh-growth-solver/pkg/core"
	"github.com/llm-d/ghh-growth-solver/pkg/solver"
)

// Document is the on-disk form of a converged solve.
type Document struct {
	Scenario string `yaml:"scenario,omitempty"`

	Capital    []float64   `yaml:"capital"`
	Shocks     []float64   `yaml:"shocks"`
	Transition [][]float64 `yaml:"transition"`

	// Value and Policy are indexed [capital][shock].
	Value  [][]float64 `yaml:"value"`
	Policy [][]int     `yaml:"policy"`

	ElapsedSeconds float64 `yaml:"elapsedSeconds"`
	Iterations     int     `yaml:"iterations"`
	Diff           float64 `yaml:"diff"`
}

// FromResult captures the grid, shock process and tables of a solve.
func FromResult(scenario string, model *core.Model, result *solver.Result) *Document {
	return &Document{
		Scenario:       scenario,
		Capital:        model.Capital.Points(),
		Shocks:         model.Shocks.Values(),
		Transition:     model.Shocks.Matrix(),
		Value:          result.Value.Rows(),
		Policy:         result.Policy.Rows(),
		ElapsedSeconds: result.Elapsed.Seconds(),
		Iterations:     result.Iterations,
		Diff:           result.Diff,
	}
}

// Validate checks that the tables agree with the grid and shock sizes.
func (d *Document) Validate() error {
	nK, nS := len(d.Capital), len(d.Shocks)
	if nK == 0 || nS == 0 {
		return fmt.Errorf("snapshot has an empty grid (%d capital points, %d shock states)", nK, nS)
	}
	if len(d.Value) != nK {
		return fmt.Errorf("value table has %d rows, grid has %d points", len(d.Value), nK)
	}
	if len(d.Policy) != nK {
		return fmt.Errorf("policy table has %d rows, grid has %d points", len(d.Policy), nK)
	}
	for k := 0; k < nK; k++ {
		if len(d.Value[k]) != nS || len(d.Policy[k]) != nS {
			return fmt.Errorf("row %d does not have %d shock columns", k, nS)
		}
		for s, next := range d.Policy[k] {
			if next < 0 || next >= nK {
				return fmt.Errorf("policy[%d][%d] = %d is outside the capital grid", k, s, next)
			}
		}
	}
	return nil
}

// ValueTable returns the stored value function.
func (d *Document) ValueTable() (*core.ValueTable, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return core.ValueTableFromRows(d.Value)
}

// PolicyTable returns the stored next-capital indices.
func (d *Document) PolicyTable() (*core.PolicyTable, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	p := core.NewPolicyTable(len(d.Capital), len(d.Shocks))
	for k, row := range d.Policy {
		for s, next := range row {
			p.Set(k, s, next)
		}
	}
	return p, nil
}

// WarmStart returns the value table for use with model, failing when the
// stored grid has a different shape.
func (d *Document) WarmStart(model *core.Model) (*core.ValueTable, error) {
	if len(d.Capital) != model.Capital.Len() || len(d.Shocks) != model.Shocks.Len() {
		return nil, fmt.Errorf("snapshot grid is %dx%d, model grid is %dx%d",
			len(d.Capital), len(d.Shocks), model.Capital.Len(), model.Shocks.Len())
	}
	return d.ValueTable()
}

// Write encodes d as YAML.
func Write(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

// Read decodes and validates a YAML snapshot.
func Read(r io.Reader) (*Document, error) {
	var d Document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &d, nil
}

// WriteFile writes d to path.
func WriteFile(path string, d *Document) error {
	var buf bytes.Buffer
	if err := Write(&buf, d); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a snapshot from path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
