package epidemic_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/integrators"
)

func solve(m *epidemic.Model, x0 dynamo.State, t1 float64, points int) *dynamo.Solution {
	span := dynamo.Span{Start: 0, End: t1}
	sol, err := integrators.NewRK45().Solve(context.Background(), m, span, x0, dynamo.Linspace(0, t1, points))
	Expect(err).NotTo(HaveOccurred())
	Expect(sol.States).To(HaveLen(points))
	return sol
}

func argmax(xs []float64) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

var _ = Describe("SEIR reference scenario", func() {
	var (
		params epidemic.Params
		x0     dynamo.State
		sol    *dynamo.Solution
	)

	BeforeEach(func() {
		params = epidemic.Params{N: 100, Beta: 1.5, Gamma: 0.1, Sigma: 1.0 / 3.0}
		x0 = dynamo.State{99, 0, 1, 0}
		sol = solve(epidemic.NewSEIR(params), x0, 160, 1000)
	})

	It("reproduces the initial state at t0", func() {
		Expect(sol.Times[0]).To(Equal(0.0))
		Expect(sol.States[0]).To(Equal(x0))
	})

	It("ends exactly at t1", func() {
		Expect(sol.Times[len(sol.Times)-1]).To(Equal(160.0))
	})

	It("conserves the total population", func() {
		for _, x := range sol.States {
			Expect(math.Abs(x.Sum() - params.N)).To(BeNumerically("<=", 1e-6*params.N))
		}
	})

	It("keeps every compartment non-negative", func() {
		for _, x := range sol.States {
			for _, v := range x {
				Expect(v).To(BeNumerically(">=", -1e-6*params.N))
			}
		}
	})

	It("never increases S", func() {
		s := sol.Series(0)
		for i := 1; i < len(s); i++ {
			Expect(s[i]).To(BeNumerically("<=", s[i-1]+1e-9*params.N))
		}
		Expect(s[len(s)-1]).To(BeNumerically("<", 0.01))
	})

	It("lets E and I rise to an interior peak and decay", func() {
		for _, idx := range []int{1, 2} {
			series := sol.Series(idx)
			peak := argmax(series)
			Expect(peak).To(BeNumerically(">", 0))
			Expect(peak).To(BeNumerically("<", len(series)-1))
			Expect(series[len(series)-1]).To(BeNumerically("<", 0.01))
		}

		infectious := sol.Series(2)
		peak := argmax(infectious)
		Expect(infectious[peak]).To(BeNumerically("~", 52.6, 0.5))
		Expect(sol.Times[peak]).To(BeNumerically("~", 14.1, 0.5))
	})

	It("drives R monotonically toward N", func() {
		r := sol.Series(3)
		for i := 1; i < len(r); i++ {
			Expect(r[i]).To(BeNumerically(">=", r[i-1]-1e-9*params.N))
		}
		Expect(r[len(r)-1]).To(BeNumerically(">", 99.9))
	})

	It("is deterministic", func() {
		again := solve(epidemic.NewSEIR(params), x0, 160, 1000)
		Expect(again.States).To(Equal(sol.States))
		Expect(again.Stats).To(Equal(sol.Stats))
	})
})

var _ = DescribeTable("population invariants across regimes",
	func(params epidemic.Params, x0 dynamo.State, t1 float64) {
		m := epidemic.NewSEIR(params)
		Expect(m.ValidateInitial(x0)).To(Succeed())

		sol := solve(m, x0, t1, 500)
		s := sol.Series(0)
		for i, x := range sol.States {
			Expect(math.Abs(x.Sum() - params.N)).To(BeNumerically("<=", 1e-6*params.N))
			for _, v := range x {
				Expect(v).To(BeNumerically(">=", -1e-6*params.N))
			}
			if i > 0 {
				Expect(s[i]).To(BeNumerically("<=", s[i-1]+1e-9*params.N))
			}
		}
	},
	Entry("fast outbreak", epidemic.Params{N: 1000, Beta: 3, Gamma: 0.5, Sigma: 1}, dynamo.State{990, 0, 10, 0}, 100.0),
	Entry("slow outbreak", epidemic.Params{N: 1e4, Beta: 0.3, Gamma: 0.1, Sigma: 0.2}, dynamo.State{9999, 0, 1, 0}, 365.0),
	Entry("no transmission", epidemic.Params{N: 500, Beta: 0, Gamma: 0.2, Sigma: 0.5}, dynamo.State{400, 50, 50, 0}, 50.0),
	Entry("large population", epidemic.Params{N: 1e6, Beta: 0.357, Gamma: 1.0 / 7.0, Sigma: 1.0 / 5.2}, dynamo.State{1e6 - 10, 0, 10, 0}, 365.0),
)

var _ = Describe("SIR model", func() {
	It("conserves population and burns out", func() {
		params := epidemic.Params{N: 1000, Beta: 0.5, Gamma: 0.1}
		sol := solve(epidemic.NewSIR(params), dynamo.State{999, 1, 0}, 200, 400)

		for _, x := range sol.States {
			Expect(math.Abs(x.Sum() - params.N)).To(BeNumerically("<=", 1e-6*params.N))
		}
		final := sol.Final()
		Expect(final[1]).To(BeNumerically("<", 1))
		Expect(final[2]).To(BeNumerically(">", 900))
	})

	It("keeps S flat when nobody is infectious", func() {
		params := epidemic.Params{N: 100, Beta: 2, Gamma: 0.1}
		sol := solve(epidemic.NewSIR(params), dynamo.State{100, 0, 0}, 10, 11)
		for _, x := range sol.States {
			Expect(x).To(Equal(dynamo.State{100, 0, 0}))
		}
	})
})
