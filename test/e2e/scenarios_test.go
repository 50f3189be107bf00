package e2e

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llm-d/ghh-growth-solver/internal/analysis"
	"github.com/llm-d/ghh-growth-solver/internal/collector"
	"github.com/llm-d/ghh-growth-solver/internal/config"
	"github.com/llm-d/ghh-growth-solver/internal/snapshot"
	"github.com/llm-d/ghh-growth-solver/pkg/core"
	"github.com/llm-d/ghh-growth-solver/pkg/solver"
)

func solveScenario(ctx context.Context, name string) (*config.ScenarioConfig, *core.Model, *solver.Solver, *solver.Result) {
	cfg, err := config.Load(ctx, config.LoadOptions{Path: configPath, Scenario: name})
	Expect(err).NotTo(HaveOccurred())
	model, err := cfg.NewModel()
	Expect(err).NotTo(HaveOccurred())
	s, err := solver.NewSolver(model, cfg.SolverOptions())
	Expect(err).NotTo(HaveOccurred())
	result, err := s.Solve(ctx)
	Expect(err).NotTo(HaveOccurred())
	return cfg, model, s, result
}

var _ = Describe("GHH growth model", Ordered, func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("on a three-point grid with serially uncorrelated shocks", func() {
		It("should build an even transition matrix and converge", func() {
			_, model, _, result := solveScenario(ctx, "tiny")

			Expect(model.Capital.Points()).To(Equal([]float64{0.0005, 0.5, 1}))
			Expect(model.Shocks.Matrix()).To(Equal([][]float64{{0.5, 0.5}, {0.5, 0.5}}))
			Expect(result.Diff).To(BeNumerically("<=", solver.DefaultOptions().Tolerance))

			rows, cols := result.Policy.Dims()
			Expect(rows).To(Equal(3))
			Expect(cols).To(Equal(2))
		})
	})

	Context("without shocks", func() {
		It("should produce a monotone capital policy", func() {
			_, model, _, result := solveScenario(ctx, "deterministic")

			Expect(model.Shocks.Value(0)).To(Equal(model.Shocks.Value(1)))
			for s := 0; s < model.Shocks.Len(); s++ {
				column := result.Policy.Column(s)
				for k := 1; k < len(column); k++ {
					Expect(column[k]).To(BeNumerically(">=", column[k-1]), "shock %d capital %d", s, k)
				}
			}
			Expect(result.Policy.Column(0)).To(Equal(result.Policy.Column(1)))
		})
	})

	Context("with and without modified policy iteration", func() {
		It("should converge to the same value table", func() {
			_, _, _, plain := solveScenario(ctx, "precise")
			_, _, _, mpi := solveScenario(ctx, "precise-mpi")

			Expect(mpi.Iterations).To(BeNumerically("<", plain.Iterations))
			Expect(mpi.Value.MaxAbsDiff(plain.Value)).To(BeNumerically("<", solver.DefaultOptions().Tolerance))
		})
	})

	Context("when persisting and restarting", func() {
		It("should warm start from a snapshot in one sweep", func() {
			cfg, model, _, result := solveScenario(ctx, "default")

			path := filepath.Join(GinkgoT().TempDir(), "solution.yaml")
			Expect(snapshot.WriteFile(path, snapshot.FromResult(cfg.Name, model, result))).To(Succeed())
			doc, err := snapshot.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())

			opts := cfg.SolverOptions()
			opts.WarmStart, err = doc.WarmStart(model)
			Expect(err).NotTo(HaveOccurred())
			s, err := solver.NewSolver(model, opts)
			Expect(err).NotTo(HaveOccurred())
			warm, err := s.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(warm.Iterations).To(Equal(1))
		})
	})

	Context("when simulating the solved economy", func() {
		It("should report finite moments for output", func() {
			_, model, s, result := solveScenario(ctx, "default")

			sim, err := analysis.Simulate(ctx, model,
				solver.NewOnDemandStaticPolicy(model, s.StaticSolver()),
				result.Policy, analysis.DefaultSimulationOptions())
			Expect(err).NotTo(HaveOccurred())

			moments := analysis.ModelMoments(sim, collector.DefaultHPLambda)
			Expect(moments).To(HaveKey(collector.SeriesOutput))
			Expect(moments[collector.SeriesOutput].StdDev).To(BeNumerically(">=", 0))
		})
	})
})
