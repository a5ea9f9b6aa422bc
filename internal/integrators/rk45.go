package integrators

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
	"go.uber.org/zap"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0

	// continuous extension (Hairer, contd5)
	d1 = -12715105075.0 / 11282082432.0
	d3 = 87487479700.0 / 32700410799.0
	d4 = -10690763975.0 / 1880347072.0
	d5 = 701980252875.0 / 199316789632.0
	d6 = -1453857185.0 / 822651844.0
	d7 = 69997945.0 / 29380423.0
)

// RK45 is an adaptive Dormand-Prince 5(4) solver with dense output.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
	settings
}

func NewRK45(opts ...Option) *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		settings: newSettings(opts),
	}
}

func (r *RK45) Options() Options { return r.opts }

// Step takes one step of size dt and keeps the fifth-order result.
func (r *RK45) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return r.attempt(sys, x, sys.Derive(t, x), t, dt).x
}

type dpStep struct {
	x   dynamo.State
	k   [7]dynamo.State
	err float64
}

func (r *RK45) attempt(sys dynamo.System, x, k1 dynamo.State, t, h float64) dpStep {
	n := len(x)
	var s dpStep
	s.k[0] = k1

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + h*b21*k1[i]
	}
	k2 := sys.Derive(t+a2*h, x2)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3 := sys.Derive(t+a3*h, x3)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := sys.Derive(t+a4*h, x4)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := sys.Derive(t+a5*h, x5)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := sys.Derive(t+h, x6)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	k7 := sys.Derive(t+h, xNew)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.opts.AbsTol + r.opts.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		sum += (errEst / scale) * (errEst / scale)
	}

	s.x = xNew
	s.k[1], s.k[2], s.k[3], s.k[4], s.k[5], s.k[6] = k2, k3, k4, k5, k6, k7
	s.err = math.Sqrt(sum / float64(n))
	return s
}

// interpolate evaluates the continuous extension at t0 + theta*h.
func (s *dpStep) interpolate(x0 dynamo.State, h, theta float64) dynamo.State {
	out := make(dynamo.State, len(x0))
	k := s.k
	rest := 1 - theta
	for i := range x0 {
		ydiff := s.x[i] - x0[i]
		bspl := h*k[0][i] - ydiff
		r4 := ydiff - h*k[6][i] - bspl
		r5 := h * (d1*k[0][i] + d3*k[2][i] + d4*k[3][i] + d5*k[4][i] + d6*k[5][i] + d7*k[6][i])
		out[i] = x0[i] + theta*(ydiff+rest*(bspl+theta*(r4+rest*r5)))
	}
	return out
}

// Solve integrates sys over span and samples the dense output at every grid
// point. On failure the returned solution is nil.
func (r *RK45) Solve(ctx context.Context, sys dynamo.System, span dynamo.Span, x0 dynamo.State, grid []float64) (*dynamo.Solution, error) {
	if err := dynamo.ValidateProblem(sys, span, x0, grid); err != nil {
		return nil, err
	}

	counter := &counting{System: sys}
	length := span.Length()
	maxStep := r.opts.MaxStep
	if maxStep <= 0 || maxStep > length {
		maxStep = length
	}
	minStep := r.opts.MinStep
	if minStep <= 0 {
		minStep = 1e-12 * length
	}

	sol := &dynamo.Solution{
		Times:  append([]float64(nil), grid...),
		States: make([]dynamo.State, 0, len(grid)),
		Labels: sys.Labels(),
	}

	t := span.Start
	x := x0.Clone()
	attempts := 0
	fail := func(err error) error {
		simErr := &dynamo.SimulationError{Step: attempts, Time: t, State: x.Clone(), Wrapped: err}
		r.log.Debug("rk45 integration failed", zap.Error(simErr))
		return simErr
	}

	k1 := counter.Derive(t, x)
	if !k1.IsValid() {
		return nil, fail(dynamo.ErrInvalidState)
	}

	next := 0
	for next < len(grid) && grid[next] <= t {
		sol.States = append(sol.States, x.Clone())
		next++
	}

	h := r.opts.InitialStep
	if h <= 0 {
		h = r.initialStep(counter, t, x, k1, length)
	}
	h = math.Min(h, maxStep)

	for t < span.End {
		select {
		case <-ctx.Done():
			return nil, fail(errors.Join(dynamo.ErrContextCanceled, ctx.Err()))
		default:
		}

		if attempts >= r.opts.MaxSteps {
			return nil, fail(dynamo.ErrStepBudget)
		}
		if h < math.Max(minStep, 10*ulp(t)) {
			return nil, fail(dynamo.ErrStepTooSmall)
		}

		last := false
		if t+h >= span.End {
			h = span.End - t
			last = true
		}

		step := r.attempt(counter, x, k1, t, h)
		attempts++

		if !step.x.IsValid() || math.IsNaN(step.err) || math.IsInf(step.err, 0) {
			sol.Stats.Rejected++
			h *= r.minScale
			continue
		}
		if step.err > 1 {
			sol.Stats.Rejected++
			h *= math.Max(r.minScale, r.safety*math.Pow(step.err, -0.2))
			continue
		}

		tNew := t + h
		if last {
			tNew = span.End
		}
		for next < len(grid) && grid[next] <= tNew {
			if grid[next] == tNew {
				sol.States = append(sol.States, step.x.Clone())
			} else {
				sol.States = append(sol.States, step.interpolate(x, h, (grid[next]-t)/h))
			}
			next++
		}

		t, x, k1 = tNew, step.x, step.k[6]
		sol.Stats.Steps++
		if !k1.IsValid() {
			return nil, fail(dynamo.ErrInvalidState)
		}

		scale := r.maxScale
		if step.err > 0 {
			scale = math.Min(r.maxScale, r.safety*math.Pow(step.err, -0.2))
		}
		h = math.Min(h*scale, maxStep)
	}

	sol.Stats.Evaluations = counter.n
	r.log.Debug("rk45 integration finished",
		zap.Int("steps", sol.Stats.Steps),
		zap.Int("rejected", sol.Stats.Rejected),
		zap.Int("evaluations", sol.Stats.Evaluations),
		zap.Int("points", len(sol.States)))

	return sol, nil
}

// initialStep follows Hairer, Norsett & Wanner, "Solving ODEs I", II.4.
func (r *RK45) initialStep(sys dynamo.System, t float64, x, f0 dynamo.State, length float64) float64 {
	n := float64(len(x))
	scale := make([]float64, len(x))
	var d0, d1 float64
	for i := range x {
		scale[i] = r.opts.AbsTol + math.Abs(x[i])*r.opts.RelTol
		d0 += (x[i] / scale[i]) * (x[i] / scale[i])
		d1 += (f0[i] / scale[i]) * (f0[i] / scale[i])
	}
	d0 = math.Sqrt(d0 / n)
	d1 = math.Sqrt(d1 / n)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}

	x1 := make(dynamo.State, len(x))
	for i := range x {
		x1[i] = x[i] + h0*f0[i]
	}
	f1 := sys.Derive(t+h0, x1)

	var d2 float64
	for i := range x {
		v := (f1[i] - f0[i]) / scale[i]
		d2 += v * v
	}
	d2 = math.Sqrt(d2/n) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/5.0)
	}

	return math.Min(math.Min(100*h0, h1), length)
}

func ulp(t float64) float64 {
	return math.Nextafter(math.Abs(t), math.Inf(1)) - math.Abs(t)
}

type counting struct {
	dynamo.System
	n int
}

func (c *counting) Derive(t float64, x dynamo.State) dynamo.State {
	c.n++
	return c.System.Derive(t, x)
}
