package solver

import (
	"context"

	"github.com/llm-d/ghh-growth-solver/pkg/core"
)

// PolicyRefiner evaluates the value of a fixed policy by repeated sweeps,
// without searching over next-period capital.
type PolicyRefiner struct {
	model   *core.Model
	static  StaticPolicy
	workers int
}

// NewPolicyRefiner returns a refiner running its sweeps on workers goroutines.
func NewPolicyRefiner(model *core.Model, static StaticPolicy, workers int) *PolicyRefiner {
	return &PolicyRefiner{model: model, static: static, workers: workers}
}

// Refine applies sweeps policy-evaluation steps to vInit under policy and
// returns the resulting table. vInit and policy are not modified.
func (r *PolicyRefiner) Refine(ctx context.Context, vInit *core.ValueTable, policy *core.PolicyTable, sweeps int, penalty float64) (*core.ValueTable, error) {
	nK, nS := vInit.Dims()
	current := vInit
	for i := 0; i < sweeps; i++ {
		prev := current
		next := core.NewValueTable(nK, nS)
		err := forEachCapital(ctx, r.workers, nK, func(k int) {
			for s := 0; s < nS; s++ {
				next.Set(k, s, r.stateValue(k, s, policy.At(k, s), prev, penalty))
			}
		})
		if err != nil {
			return nil, err
		}
		current = next
	}
	if current == vInit {
		return vInit.Clone(), nil
	}
	return current, nil
}

func (r *PolicyRefiner) stateValue(kIdx, sIdx, kNextIdx int, prev *core.ValueTable, penalty float64) float64 {
	c := scoreCandidate(r.model, kIdx, sIdx, kNextIdx, r.static.Choice(kIdx, sIdx), prev)
	return c.score(penalty)
}
