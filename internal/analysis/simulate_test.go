package analysis

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llm-d/ghh-growth-solver/internal/collector"
	"github.com/llm-d/ghh-growth-solver/pkg/core"
	"github.com/llm-d/ghh-growth-solver/pkg/solver"
)

func newModel(points int, lambda float64) *core.Model {
	params := core.DefaultModelParameters()
	params.Lambda = lambda
	model, err := core.NewModel(params, 0, 5, points)
	Expect(err).NotTo(HaveOccurred())
	return model
}

func staticPolicy(model *core.Model) solver.StaticPolicy {
	static, err := solver.NewStaticChoiceSolver(model.Params, solver.DefaultSearchBounds(), model.Capital.Len())
	Expect(err).NotTo(HaveOccurred())
	return solver.NewOnDemandStaticPolicy(model, static)
}

var _ = Describe("Simulate", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with a solved model", func() {
		var (
			model  *core.Model
			static solver.StaticPolicy
			result *solver.Result
		)

		BeforeEach(func() {
			model = newModel(15, 0.4)
			opts := solver.DefaultOptions()
			opts.Workers = 2
			s, err := solver.NewSolver(model, opts)
			Expect(err).NotTo(HaveOccurred())
			result, err = s.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())
			static = staticPolicy(model)
		})

		It("should record the requested number of periods on the grid", func() {
			opts := DefaultSimulationOptions()
			opts.Periods = 120
			sim, err := Simulate(ctx, model, static, result.Policy, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(sim.Len()).To(Equal(120))
			Expect(sim.Output).To(HaveLen(120))
			Expect(sim.Shocks).To(HaveLen(120))

			grid := model.Capital.Points()
			for t := range sim.Capital {
				Expect(grid).To(ContainElement(sim.Capital[t]))
				Expect(sim.Investment[t]).To(BeNumerically("~", sim.Output[t]-sim.Consumption[t], 1e-12))
			}
		})

		It("should follow the policy between consecutive periods", func() {
			opts := DefaultSimulationOptions()
			opts.BurnIn = 0
			opts.Periods = 50
			sim, err := Simulate(ctx, model, static, result.Policy, opts)
			Expect(err).NotTo(HaveOccurred())
			for t := 1; t < sim.Len(); t++ {
				k := model.Capital.Nearest(sim.Capital[t-1])
				next := result.Policy.At(k, sim.Shocks[t-1])
				Expect(sim.Capital[t]).To(Equal(model.Capital.At(next)))
			}
		})

		It("should be reproducible for a fixed seed", func() {
			opts := DefaultSimulationOptions()
			first, err := Simulate(ctx, model, static, result.Policy, opts)
			Expect(err).NotTo(HaveOccurred())
			second, err := Simulate(ctx, model, static, result.Policy, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))

			opts.Seed = 99
			other, err := Simulate(ctx, model, static, result.Policy, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(other.Shocks).NotTo(Equal(first.Shocks))
		})
	})

	Context("with degenerate shock persistence", func() {
		It("should never leave the initial state when lambda is 1", func() {
			model := newModel(5, 1)
			opts := DefaultSimulationOptions()
			opts.InitialShock = 1
			sim, err := Simulate(ctx, model, staticPolicy(model), core.NewPolicyTable(5, 2), opts)
			Expect(err).NotTo(HaveOccurred())
			for _, s := range sim.Shocks {
				Expect(s).To(Equal(1))
			}
		})

		It("should alternate every period when lambda is -1", func() {
			model := newModel(5, -1)
			opts := DefaultSimulationOptions()
			opts.BurnIn = 0
			sim, err := Simulate(ctx, model, staticPolicy(model), core.NewPolicyTable(5, 2), opts)
			Expect(err).NotTo(HaveOccurred())
			for t, s := range sim.Shocks {
				Expect(s).To(Equal(t % 2))
			}
		})
	})

	Context("with invalid input", func() {
		var model *core.Model

		BeforeEach(func() {
			model = newModel(5, 0.4)
		})

		DescribeTable("should be rejected",
			func(policy *core.PolicyTable, mutate func(*SimulationOptions)) {
				opts := DefaultSimulationOptions()
				mutate(&opts)
				_, err := Simulate(ctx, model, staticPolicy(model), policy, opts)
				Expect(err).To(HaveOccurred())
			},
			Entry("policy shape", core.NewPolicyTable(4, 2), func(*SimulationOptions) {}),
			Entry("no periods", core.NewPolicyTable(5, 2), func(o *SimulationOptions) { o.Periods = 0 }),
			Entry("negative burn-in", core.NewPolicyTable(5, 2), func(o *SimulationOptions) { o.BurnIn = -1 }),
			Entry("capital outside grid", core.NewPolicyTable(5, 2), func(o *SimulationOptions) { o.InitialCapital = 5 }),
			Entry("shock outside states", core.NewPolicyTable(5, 2), func(o *SimulationOptions) { o.InitialShock = 2 }),
		)

		It("should stop on a cancelled context", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := Simulate(cancelled, model, staticPolicy(model), core.NewPolicyTable(5, 2), DefaultSimulationOptions())
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})

var _ = Describe("ModelMoments", func() {
	It("should compute moments of the simulated cycles", func() {
		n := 120
		sim := &Simulation{}
		for t := 0; t < n; t++ {
			wave := math.Sin(float64(t) / 2)
			sim.Shocks = append(sim.Shocks, t%2)
			sim.Capital = append(sim.Capital, 2)
			sim.Output = append(sim.Output, math.Exp(0.02*wave))
			sim.Consumption = append(sim.Consumption, math.Exp(0.01*wave))
			sim.Investment = append(sim.Investment, math.Exp(0.05*wave))
			sim.Labor = append(sim.Labor, math.Exp(-0.01*wave))
			sim.Utilization = append(sim.Utilization, 0.5*math.Exp(0.03*wave))
		}

		moments := ModelMoments(sim, collector.DefaultHPLambda)
		Expect(moments).To(HaveLen(len(collector.SeriesNames)))

		y := moments[collector.SeriesOutput]
		Expect(y.Correlation).To(BeNumerically("~", 1, 1e-9))
		Expect(moments[collector.SeriesConsumption].Correlation).To(BeNumerically("~", 1, 1e-9))
		Expect(moments[collector.SeriesLabor].Correlation).To(BeNumerically("~", -1, 1e-9))
		Expect(moments[collector.SeriesInvestment].StdDev).To(BeNumerically("~", 2.5*y.StdDev, 1e-9))
		Expect(moments[collector.SeriesUtilization].StdDev).To(BeNumerically("~", 1.5*y.StdDev, 1e-9))
		Expect(y.Autocorrelation).To(BeNumerically(">", 0.5))
		Expect(math.IsNaN(moments[collector.SeriesProductivity].StdDev)).To(BeTrue())
	})

	It("should expose simulated series with quarterly dates", func() {
		sim := &Simulation{Output: []float64{1, 2, 3}}
		ts := sim.Series(collector.SeriesOutput)
		Expect(ts.Len()).To(Equal(3))
		Expect(ts.Points[1].Date.Sub(ts.Points[0].Date).Hours()).To(BeNumerically(">", 24*88))
		Expect(sim.Series(collector.SeriesProductivity)).To(BeNil())
	})
})
