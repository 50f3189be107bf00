package solver

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llm-d/ghh-growth-solver/pkg/core"
)

var _ = Describe("StaticChoiceSolver", func() {
	var (
		params core.ModelParameters
		bounds SearchBounds
		static *StaticChoiceSolver
	)

	BeforeEach(func() {
		params = core.DefaultModelParameters()
		bounds = DefaultSearchBounds()
		var err error
		static, err = NewStaticChoiceSolver(params, bounds, 25)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with valid bounds", func() {
		It("should return the exhaustive maximum over the product grid", func() {
			for _, k := range []float64{0.05, 1, 2.5, 5} {
				for _, eps := range []float64{0.06, -0.06, 0} {
					choice := static.Solve(k, eps)
					best := static.Objective(k, eps, choice)
					for _, h := range static.UtilizationGrid() {
						for _, l := range static.LaborGrid() {
							Expect(best).To(BeNumerically(">=", static.Objective(k, eps, core.StaticChoice{H: h, L: l})),
								"k=%g eps=%g h=%g l=%g", k, eps, h, l)
						}
					}
				}
			}
		})

		It("should keep the choice within the configured bounds", func() {
			choice := static.Solve(3, 0.06)
			Expect(choice.H).To(BeNumerically(">", bounds.HMin))
			Expect(choice.H).To(BeNumerically("<=", bounds.HMax))
			Expect(choice.L).To(BeNumerically(">", bounds.LMin))
			Expect(choice.L).To(BeNumerically("<=", bounds.LMax))
		})

		It("should return a grid point", func() {
			choice := static.Solve(1.7, -0.06)
			Expect(static.UtilizationGrid()).To(ContainElement(choice.H))
			Expect(static.LaborGrid()).To(ContainElement(choice.L))
		})

		It("should break ties by the first point in row-major order", func() {
			// A negligible A and B = 0 leave a payoff that depends on l only, so every h ties.
			flat := params
			flat.A = 1e-300
			flat.B = 0
			s, err := NewStaticChoiceSolver(flat, bounds, 5)
			Expect(err).NotTo(HaveOccurred())
			choice := s.Solve(1, 0)
			Expect(choice.H).To(Equal(s.UtilizationGrid()[0]))
			Expect(choice.L).To(Equal(s.LaborGrid()[0]))
		})
	})

	Context("with invalid bounds", func() {
		It("should reject a negative utilization lower bound", func() {
			_, err := NewStaticChoiceSolver(params, SearchBounds{HMin: -0.1, HMax: 1, LMin: 0, LMax: 50}, 10)
			Expect(err).To(MatchError(core.ErrInvalidBound))
		})

		It("should reject a negative labor lower bound", func() {
			_, err := NewStaticChoiceSolver(params, SearchBounds{HMin: 0, HMax: 1, LMin: -1, LMax: 50}, 10)
			Expect(err).To(MatchError(core.ErrInvalidBound))
		})
	})
})

var _ = Describe("StaticChoiceTable", func() {
	It("should match the on-demand policy in every state", func() {
		model, err := core.NewModel(core.DefaultModelParameters(), 0, 5, 12)
		Expect(err).NotTo(HaveOccurred())
		static, err := NewStaticChoiceSolver(model.Params, DefaultSearchBounds(), 12)
		Expect(err).NotTo(HaveOccurred())

		table, err := NewStaticChoiceTable(context.Background(), model, static, 3)
		Expect(err).NotTo(HaveOccurred())
		onDemand := NewOnDemandStaticPolicy(model, static)
		for k := 0; k < model.Capital.Len(); k++ {
			for s := 0; s < model.Shocks.Len(); s++ {
				Expect(table.Choice(k, s)).To(Equal(onDemand.Choice(k, s)))
			}
		}
	})

	It("should stop when the context is cancelled", func() {
		model, err := core.NewModel(core.DefaultModelParameters(), 0, 5, 12)
		Expect(err).NotTo(HaveOccurred())
		static, err := NewStaticChoiceSolver(model.Params, DefaultSearchBounds(), 12)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = NewStaticChoiceTable(ctx, model, static, 2)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("ModelParameters objective", func() {
	It("should be finite on the default search grid", func() {
		static, err := NewStaticChoiceSolver(core.DefaultModelParameters(), DefaultSearchBounds(), 10)
		Expect(err).NotTo(HaveOccurred())
		choice := static.Solve(0.001, 0.06)
		Expect(math.IsNaN(static.Objective(0.001, 0.06, choice))).To(BeFalse())
	})
})
