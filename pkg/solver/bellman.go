package solver

import (
	"github.com/llm-d/ghh-growth-solver/pkg/core"
)

// candidate is the tagged outcome of scoring one next-period capital level.
// An infeasible candidate has a non-positive utility argument and carries no value.
type candidate struct {
	value    float64
	feasible bool
}

// beats reports whether c should replace the running best. Any feasible
// candidate beats an infeasible one; infeasible candidates never replace.
func (c candidate) beats(best candidate) bool {
	if !c.feasible {
		return false
	}
	return !best.feasible || c.value > best.value
}

func (c candidate) score(penalty float64) float64 {
	if !c.feasible {
		return penalty
	}
	return c.value
}

// scoreCandidate scores moving from capital index kIdx to kNextIdx in shock
// state sIdx. The continuation row is read only for feasible candidates.
func scoreCandidate(
	m *core.Model,
	kIdx, sIdx, kNextIdx int,
	choice core.StaticChoice,
	vTomorrow *core.ValueTable,
) candidate {
	p := m.Params
	u := p.UtilityArgument(m.Capital.At(kIdx), m.Capital.At(kNextIdx), m.Shocks.Value(sIdx), choice)
	if u <= 0 {
		return candidate{}
	}
	continuation := vTomorrow.Expected(kNextIdx, m.Shocks.Row(sIdx))
	return candidate{value: p.Utility(u) + p.Beta*continuation, feasible: true}
}

// BellmanEvaluator applies the Bellman operator to a single state.
type BellmanEvaluator struct {
	model  *core.Model
	static StaticPolicy
}

// NewBellmanEvaluator returns an evaluator reading static choices from static.
func NewBellmanEvaluator(model *core.Model, static StaticPolicy) *BellmanEvaluator {
	return &BellmanEvaluator{model: model, static: static}
}

// Evaluate returns today's value in state (kIdx, sIdx) and the maximizing
// next-period capital index, given tomorrow's values. Only feasible
// candidates compete; ties keep the lowest index. When no candidate is
// feasible the state is worth penalty and the policy points at index 0.
func (b *BellmanEvaluator) Evaluate(kIdx, sIdx int, vTomorrow *core.ValueTable, penalty float64) (float64, int) {
	choice := b.static.Choice(kIdx, sIdx)

	best, bestIdx := candidate{}, 0
	for j := 0; j < b.model.Capital.Len(); j++ {
		c := scoreCandidate(b.model, kIdx, sIdx, j, choice, vTomorrow)
		if c.beats(best) {
			best, bestIdx = c, j
		}
	}
	return best.score(penalty), bestIdx
}
