package core

// Model bundles the parameters with the discretized state space.
type Model struct {
	Params  ModelParameters
	Capital *CapitalGrid
	Shocks  *ShockProcess
}

// NewModel validates params and builds the capital grid and shock process.
func NewModel(params ModelParameters, kMin, kMax float64, gridPoints int) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	capital, err := NewCapitalGrid(kMin, kMax, gridPoints)
	if err != nil {
		return nil, err
	}
	shocks, err := NewShockProcess(params.Sigma, params.Lambda)
	if err != nil {
		return nil, err
	}
	return &Model{Params: params, Capital: capital, Shocks: shocks}, nil
}

// NumStates returns the number of (capital, shock) pairs.
func (m *Model) NumStates() int {
	return m.Capital.Len() * m.Shocks.Len()
}
