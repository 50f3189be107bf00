package solver

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llm-d/ghh-growth-solver/pkg/core"
)

type countingRecorder struct {
	mu          sync.Mutex
	sweeps      int
	refinements int
	outcomes    []Outcome
}

func (r *countingRecorder) ObserveSweep(float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps++
}

func (r *countingRecorder) ObserveRefinement(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refinements++
}

func (r *countingRecorder) ObserveSolve(o Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Workers = 4
	return opts
}

var _ = Describe("Solver", func() {
	var (
		ctx   context.Context
		model *core.Model
	)

	BeforeEach(func() {
		ctx = context.Background()
		model = newTestModel(15)
	})

	Context("with a generous iteration budget", func() {
		It("should converge within tolerance", func() {
			s, err := NewSolver(model, testOptions())
			Expect(err).NotTo(HaveOccurred())

			result, err := s.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Diff).To(BeNumerically("<=", testOptions().Tolerance))
			Expect(result.Iterations).To(BeNumerically(">", 1))
			Expect(result.DiffHistory).To(HaveLen(result.Iterations))
			Expect(result.DiffHistory[len(result.DiffHistory)-1]).To(Equal(result.Diff))
			Expect(result.Elapsed).To(BeNumerically(">", 0))

			rows, cols := result.Value.Dims()
			Expect(rows).To(Equal(model.Capital.Len()))
			Expect(cols).To(Equal(model.Shocks.Len()))
		})

		It("should shrink the sup-norm diff on every sweep", func() {
			s, err := NewSolver(model, testOptions())
			Expect(err).NotTo(HaveOccurred())
			result, err := s.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())

			for i := 1; i < len(result.DiffHistory); i++ {
				Expect(result.DiffHistory[i]).To(BeNumerically("<=", result.DiffHistory[i-1]+1e-12), "sweep %d", i)
			}
		})

		It("should produce a policy inside the capital grid", func() {
			s, err := NewSolver(model, testOptions())
			Expect(err).NotTo(HaveOccurred())
			result, err := s.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, row := range result.Policy.Rows() {
				for _, idx := range row {
					Expect(idx).To(BeNumerically(">=", 0))
					Expect(idx).To(BeNumerically("<", model.Capital.Len()))
				}
			}
		})
	})

	Context("with a small iteration budget", func() {
		It("should fail with NonConvergence", func() {
			opts := testOptions()
			opts.MaxIterations = 5
			recorder := &countingRecorder{}
			opts.Recorder = recorder
			s, err := NewSolver(model, opts)
			Expect(err).NotTo(HaveOccurred())

			result, err := s.Solve(ctx)
			Expect(result).To(BeNil())
			Expect(err).To(MatchError(ErrNonConvergence))

			var nce *NonConvergenceError
			Expect(errors.As(err, &nce)).To(BeTrue())
			Expect(nce.Iterations).To(Equal(5))
			Expect(nce.Diff).To(BeNumerically(">", opts.Tolerance))
			Expect(nce.Tolerance).To(Equal(opts.Tolerance))
			Expect(recorder.sweeps).To(Equal(5))
			Expect(recorder.outcomes).To(Equal([]Outcome{OutcomeNonConvergence}))
		})
	})

	Context("with a warm start", func() {
		It("should converge in one sweep from a converged table", func() {
			s, err := NewSolver(model, testOptions())
			Expect(err).NotTo(HaveOccurred())
			first, err := s.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())

			opts := testOptions()
			opts.WarmStart = first.Value
			warm, err := NewSolver(model, opts)
			Expect(err).NotTo(HaveOccurred())
			second, err := warm.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Iterations).To(Equal(1))
			Expect(second.Diff).To(BeNumerically("<=", first.Diff))
		})

		It("should reject a table of the wrong shape", func() {
			opts := testOptions()
			opts.WarmStart = core.NewValueTable(3, 2)
			s, err := NewSolver(model, opts)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Solve(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("warm start"))
		})
	})

	Context("with modified policy iteration", func() {
		It("should converge in fewer sweeps and report refinements", func() {
			plain, err := NewSolver(model, testOptions())
			Expect(err).NotTo(HaveOccurred())
			plainResult, err := plain.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())

			opts := testOptions()
			opts.ModifiedPolicyIteration = true
			recorder := &countingRecorder{}
			opts.Recorder = recorder
			mpi, err := NewSolver(model, opts)
			Expect(err).NotTo(HaveOccurred())
			mpiResult, err := mpi.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(mpiResult.Iterations).To(BeNumerically("<", plainResult.Iterations))
			Expect(recorder.refinements).To(BeNumerically(">", 0))
			Expect(recorder.refinements).To(BeNumerically("<", mpiResult.Iterations+1))
			Expect(recorder.outcomes).To(Equal([]Outcome{OutcomeConverged}))
		})
	})

	Context("with execution variants", func() {
		It("should give identical tables for any worker count and static reuse", func() {
			base := testOptions()
			base.Workers = 1
			s, err := NewSolver(model, base)
			Expect(err).NotTo(HaveOccurred())
			want, err := s.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())

			variant := testOptions()
			variant.Workers = 8
			variant.ReuseStaticChoices = true
			s, err = NewSolver(model, variant)
			Expect(err).NotTo(HaveOccurred())
			got, err := s.Solve(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(got.Value.Rows()).To(Equal(want.Value.Rows()))
			Expect(got.Policy.Rows()).To(Equal(want.Policy.Rows()))
			Expect(got.Iterations).To(Equal(want.Iterations))
		})
	})

	Context("with a cancelled context", func() {
		It("should stop before sweeping", func() {
			s, err := NewSolver(model, testOptions())
			Expect(err).NotTo(HaveOccurred())
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err = s.Solve(cancelled)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Context("with invalid options", func() {
		DescribeTable("should be rejected by NewSolver",
			func(mutate func(*Options)) {
				opts := testOptions()
				mutate(&opts)
				_, err := NewSolver(model, opts)
				Expect(err).To(HaveOccurred())
			},
			Entry("zero tolerance", func(o *Options) { o.Tolerance = 0 }),
			Entry("zero iteration budget", func(o *Options) { o.MaxIterations = 0 }),
			Entry("no refinement sweeps", func(o *Options) { o.ModifiedPolicyIteration = true; o.PolicySweeps = 0 }),
			Entry("negative static grid", func(o *Options) { o.StaticGridPoints = -1 }),
			Entry("negative labor bound", func(o *Options) { o.Search.LMin = -1 }),
		)

		It("should reject a nil model", func() {
			_, err := NewSolver(nil, testOptions())
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Phase", func() {
	It("should name every state", func() {
		Expect(PhaseInitializing.String()).To(Equal("Initializing"))
		Expect(PhaseIterating.String()).To(Equal("Iterating"))
		Expect(PhaseConverged.String()).To(Equal("Converged"))
		Expect(PhaseBudgetExhausted.String()).To(Equal("BudgetExhausted"))
	})
})
