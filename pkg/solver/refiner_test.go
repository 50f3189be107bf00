package solver

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llm-d/ghh-growth-solver/pkg/core"
)

var _ = Describe("PolicyRefiner", func() {
	const penalty = -500.0

	var (
		ctx     context.Context
		model   *core.Model
		static  StaticPolicy
		refiner *PolicyRefiner
		start   *core.ValueTable
		policy  *core.PolicyTable
	)

	BeforeEach(func() {
		ctx = context.Background()
		model = newTestModel(10)
		s, err := NewStaticChoiceSolver(model.Params, DefaultSearchBounds(), 10)
		Expect(err).NotTo(HaveOccurred())
		static = NewOnDemandStaticPolicy(model, s)
		refiner = NewPolicyRefiner(model, static, 4)

		// One Bellman sweep from zero gives a realistic policy to hold fixed.
		eval := NewBellmanEvaluator(model, static)
		zero := core.NewValueTable(model.Capital.Len(), model.Shocks.Len())
		start = core.NewValueTable(model.Capital.Len(), model.Shocks.Len())
		policy = core.NewPolicyTable(model.Capital.Len(), model.Shocks.Len())
		for k := 0; k < model.Capital.Len(); k++ {
			for sIdx := 0; sIdx < model.Shocks.Len(); sIdx++ {
				v, next := eval.Evaluate(k, sIdx, zero, penalty)
				start.Set(k, sIdx, v)
				policy.Set(k, sIdx, next)
			}
		}
	})

	It("should return an unmodified copy for zero sweeps", func() {
		out, err := refiner.Refine(ctx, start, policy, 0, penalty)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Rows()).To(Equal(start.Rows()))
		out.Set(0, 0, 42)
		Expect(start.At(0, 0)).NotTo(Equal(42.0))
	})

	It("should evaluate each state at the policy's next capital", func() {
		out, err := refiner.Refine(ctx, start, policy, 1, penalty)
		Expect(err).NotTo(HaveOccurred())

		p := model.Params
		for k := 0; k < model.Capital.Len(); k++ {
			for sIdx := 0; sIdx < model.Shocks.Len(); sIdx++ {
				next := policy.At(k, sIdx)
				u := utilityArgument(p, model.Capital.At(k), model.Capital.At(next), model.Shocks.Value(sIdx), static.Choice(k, sIdx))
				want := penalty
				if u > 0 {
					want = p.Utility(u) + p.Beta*start.Expected(next, model.Shocks.Row(sIdx))
				}
				Expect(out.At(k, sIdx)).To(BeNumerically("~", want, 1e-12))
			}
		}
	})

	It("should compose sweeps", func() {
		three, err := refiner.Refine(ctx, start, policy, 3, penalty)
		Expect(err).NotTo(HaveOccurred())

		stepwise := start
		for i := 0; i < 3; i++ {
			stepwise, err = refiner.Refine(ctx, stepwise, policy, 1, penalty)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(three.Rows()).To(Equal(stepwise.Rows()))
	})

	It("should not modify its inputs", func() {
		before := start.Rows()
		policyBefore := policy.Rows()
		_, err := refiner.Refine(ctx, start, policy, 5, penalty)
		Expect(err).NotTo(HaveOccurred())
		Expect(start.Rows()).To(Equal(before))
		Expect(policy.Rows()).To(Equal(policyBefore))
	})

	It("should move the table toward the policy's own value", func() {
		few, err := refiner.Refine(ctx, start, policy, 5, penalty)
		Expect(err).NotTo(HaveOccurred())
		many, err := refiner.Refine(ctx, start, policy, 400, penalty)
		Expect(err).NotTo(HaveOccurred())
		more, err := refiner.Refine(ctx, many, policy, 1, penalty)
		Expect(err).NotTo(HaveOccurred())

		Expect(more.MaxAbsDiff(many)).To(BeNumerically("<", few.MaxAbsDiff(start)))
		Expect(more.MaxAbsDiff(many)).To(BeNumerically("<", 1e-4))
	})
})
