package epidemic

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
)

// ErrInvalidParams is returned for a non-positive population or a negative rate.
var ErrInvalidParams = fmt.Errorf("epidemic: invalid parameters: %w", dynamo.ErrParameterBounds)

// ErrInvalidInitialState is returned when the initial compartments do not fit the model.
var ErrInvalidInitialState = errors.New("epidemic: invalid initial state")

// Params holds the rate constants of a compartmental model. Rates are per unit time.
type Params struct {
	N     float64 // total population
	Beta  float64 // transmission rate
	Gamma float64 // recovery rate
	Sigma float64 // incubation rate, 1/latent period
}

func (p Params) Validate() error {
	if math.IsNaN(p.N) || math.IsInf(p.N, 0) || p.N <= 0 {
		return fmt.Errorf("%w: population N must be positive and finite, got %g", ErrInvalidParams, p.N)
	}
	for _, r := range []struct {
		name  string
		value float64
	}{
		{"beta", p.Beta},
		{"gamma", p.Gamma},
		{"sigma", p.Sigma},
	} {
		if math.IsNaN(r.value) || math.IsInf(r.value, 0) || r.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative and finite, got %g", ErrInvalidParams, r.name, r.value)
		}
	}
	return nil
}

// R0 is the basic reproduction number beta/gamma.
func (p Params) R0() float64 {
	if p.Gamma == 0 {
		return math.Inf(1)
	}
	return p.Beta / p.Gamma
}

// IncubationPeriod is the mean time spent in E.
func (p Params) IncubationPeriod() float64 {
	if p.Sigma == 0 {
		return math.Inf(1)
	}
	return 1 / p.Sigma
}

// InfectiousPeriod is the mean time spent in I.
func (p Params) InfectiousPeriod() float64 {
	if p.Gamma == 0 {
		return math.Inf(1)
	}
	return 1 / p.Gamma
}

func (p Params) String() string {
	return fmt.Sprintf("N=%g beta=%g gamma=%g sigma=%g", p.N, p.Beta, p.Gamma, p.Sigma)
}
