package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ValueTable maps (capital index, shock index) to a value.
// Concurrent Set calls on distinct cells are safe; the backing storage is a
// single dense row-major slice.
type ValueTable struct {
	m *mat.Dense
}

// NewValueTable returns a zero table with the given shape.
func NewValueTable(capitalPoints, shockStates int) *ValueTable {
	return &ValueTable{m: mat.NewDense(capitalPoints, shockStates, nil)}
}

// ValueTableFromRows builds a table from row slices (one row per capital index).
func ValueTableFromRows(rows [][]float64) (*ValueTable, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("value table must be non-empty")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("value table row %d has %d columns, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return &ValueTable{m: mat.NewDense(len(rows), cols, data)}, nil
}

// Dims returns the number of capital points and shock states.
func (v *ValueTable) Dims() (int, int) {
	return v.m.Dims()
}

// At returns V[k, s].
func (v *ValueTable) At(k, s int) float64 {
	return v.m.At(k, s)
}

// Set stores V[k, s].
func (v *ValueTable) Set(k, s int, value float64) {
	v.m.Set(k, s, value)
}

// Expected returns the probability-weighted sum of row k over tomorrow's states.
func (v *ValueTable) Expected(k int, probs [NumShockStates]float64) float64 {
	var sum float64
	for s, p := range probs {
		sum += v.m.At(k, s) * p
	}
	return sum
}

// Clone returns an independent copy.
func (v *ValueTable) Clone() *ValueTable {
	return &ValueTable{m: mat.DenseCopyOf(v.m)}
}

// MaxAbsDiff returns the sup-norm distance between two tables of the same shape.
func (v *ValueTable) MaxAbsDiff(other *ValueTable) float64 {
	var diff mat.Dense
	diff.Sub(v.m, other.m)
	raw := diff.RawMatrix()
	var out float64
	for i := 0; i < raw.Rows; i++ {
		for _, x := range raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols] {
			if a := math.Abs(x); a > out {
				out = a
			}
		}
	}
	return out
}

// Rows returns a copy of the table as row slices.
func (v *ValueTable) Rows() [][]float64 {
	r, c := v.m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(make([]float64, c), i, v.m)
	}
	return out
}

// Matrix exposes the table as a read-only gonum matrix.
func (v *ValueTable) Matrix() mat.Matrix {
	return v.m
}

// PolicyTable maps (capital index, shock index) to the chosen next-period capital index.
type PolicyTable struct {
	rows, cols int
	idx        []int
}

// NewPolicyTable returns a table with every entry pointing at capital index 0.
func NewPolicyTable(capitalPoints, shockStates int) *PolicyTable {
	return &PolicyTable{rows: capitalPoints, cols: shockStates, idx: make([]int, capitalPoints*shockStates)}
}

// Dims returns the number of capital points and shock states.
func (p *PolicyTable) Dims() (int, int) {
	return p.rows, p.cols
}

// At returns the next-period capital index chosen in state (k, s).
func (p *PolicyTable) At(k, s int) int {
	return p.idx[k*p.cols+s]
}

// Set stores the next-period capital index for state (k, s).
func (p *PolicyTable) Set(k, s, next int) {
	p.idx[k*p.cols+s] = next
}

// Clone returns an independent copy.
func (p *PolicyTable) Clone() *PolicyTable {
	out := &PolicyTable{rows: p.rows, cols: p.cols, idx: make([]int, len(p.idx))}
	copy(out.idx, p.idx)
	return out
}

// Rows returns a copy of the table as row slices.
func (p *PolicyTable) Rows() [][]int {
	out := make([][]int, p.rows)
	for i := range out {
		out[i] = make([]int, p.cols)
		copy(out[i], p.idx[i*p.cols:(i+1)*p.cols])
	}
	return out
}

// Column returns the policy for shock state s across the capital grid.
func (p *PolicyTable) Column(s int) []int {
	out := make([]int, p.rows)
	for k := range out {
		out[k] = p.At(k, s)
	}
	return out
}
