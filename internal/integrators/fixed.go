package integrators

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
	"go.uber.org/zap"
)

// FixedStep drives a single-step method with a constant internal step,
// shortening the step that lands on each grid point.
type FixedStep struct {
	stepper dynamo.Stepper
	dt      float64
	settings
}

func NewFixedStep(stepper dynamo.Stepper, dt float64, opts ...Option) *FixedStep {
	return &FixedStep{stepper: stepper, dt: dt, settings: newSettings(opts)}
}

func (f *FixedStep) Solve(ctx context.Context, sys dynamo.System, span dynamo.Span, x0 dynamo.State, grid []float64) (*dynamo.Solution, error) {
	if err := dynamo.ValidateProblem(sys, span, x0, grid); err != nil {
		return nil, err
	}
	if f.dt <= 0 || math.IsNaN(f.dt) || math.IsInf(f.dt, 0) {
		return nil, fmt.Errorf("%w: fixed step dt must be positive, got %g", dynamo.ErrParameterBounds, f.dt)
	}

	counter := &counting{System: sys}
	sol := &dynamo.Solution{
		Times:  append([]float64(nil), grid...),
		States: make([]dynamo.State, 0, len(grid)),
		Labels: sys.Labels(),
	}

	t := span.Start
	x := x0.Clone()
	fail := func(err error) error {
		return &dynamo.SimulationError{Step: sol.Stats.Steps, Time: t, State: x.Clone(), Wrapped: err}
	}

	for _, target := range grid {
		for t < target {
			select {
			case <-ctx.Done():
				return nil, fail(errors.Join(dynamo.ErrContextCanceled, ctx.Err()))
			default:
			}
			if sol.Stats.Steps >= f.opts.MaxSteps {
				return nil, fail(dynamo.ErrStepBudget)
			}

			h := f.dt
			landing := false
			if t+h >= target-1e-9*f.dt {
				h = target - t
				landing = true
			}

			next := f.stepper.Step(counter, x, t, h)
			if !next.IsValid() {
				return nil, fail(dynamo.ErrInvalidState)
			}
			x = next
			sol.Stats.Steps++
			if landing {
				t = target
			} else {
				t += h
			}
		}
		sol.States = append(sol.States, x.Clone())
	}

	sol.Stats.Evaluations = counter.n
	f.log.Debug("fixed-step integration finished",
		zap.Float64("dt", f.dt),
		zap.Int("steps", sol.Stats.Steps),
		zap.Int("evaluations", sol.Stats.Evaluations))

	return sol, nil
}
