package epidemic

import (
	"fmt"
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
)

// RHS maps (time, state, parameters) to the state derivative. The models
// here are autonomous and ignore t.
type RHS func(t float64, y dynamo.State, p Params) dynamo.State

// SEIR is the right-hand side for y = (S, E, I, R).
func SEIR(_ float64, y dynamo.State, p Params) dynamo.State {
	s, e, i := y[0], y[1], y[2]
	infection := p.Beta * s * i / p.N
	return dynamo.State{
		-infection,
		infection - p.Sigma*e,
		p.Sigma*e - p.Gamma*i,
		p.Gamma * i,
	}
}

// SIR is the right-hand side for y = (S, I, R). Sigma is unused.
func SIR(_ float64, y dynamo.State, p Params) dynamo.State {
	s, i := y[0], y[1]
	infection := p.Beta * s * i / p.N
	return dynamo.State{
		-infection,
		infection - p.Gamma*i,
		p.Gamma * i,
	}
}

type Compartment struct {
	Symbol string
	Name   string
}

func (c Compartment) Legend() string { return c.Symbol + ": " + c.Name }

var (
	seirCompartments = []Compartment{
		{"S", "Susceptible"},
		{"E", "Exposed"},
		{"I", "Infectious"},
		{"R", "Recovered"},
	}
	sirCompartments = []Compartment{
		{"S", "Susceptible"},
		{"I", "Infectious"},
		{"R", "Recovered"},
	}
)

// Model binds a right-hand side to a fixed parameter set.
type Model struct {
	name         string
	rhs          RHS
	params       Params
	compartments []Compartment
}

func NewSEIR(p Params) *Model {
	return &Model{name: "SEIR", rhs: SEIR, params: p, compartments: seirCompartments}
}

func NewSIR(p Params) *Model {
	return &Model{name: "SIR", rhs: SIR, params: p, compartments: sirCompartments}
}

func (m *Model) Name() string   { return m.name }
func (m *Model) Params() Params { return m.params }
func (m *Model) StateDim() int  { return len(m.compartments) }

// Derive calculates the compartment flows.
func (m *Model) Derive(t float64, x dynamo.State) dynamo.State {
	return m.rhs(t, x, m.params)
}

func (m *Model) Labels() []string {
	labels := make([]string, len(m.compartments))
	for i, c := range m.compartments {
		labels[i] = c.Symbol
	}
	return labels
}

func (m *Model) Compartments() []Compartment {
	return append([]Compartment(nil), m.compartments...)
}

// Index returns the position of a compartment symbol, or -1.
func (m *Model) Index(symbol string) int {
	for i, c := range m.compartments {
		if c.Symbol == symbol {
			return i
		}
	}
	return -1
}

// ValidateInitial checks the parameters and that x0 has one non-negative
// entry per compartment summing to N within a relative 1e-9.
func (m *Model) ValidateInitial(x0 dynamo.State) error {
	if err := m.params.Validate(); err != nil {
		return err
	}
	if len(x0) != m.StateDim() {
		return fmt.Errorf("%w: %s expects %d compartments, got %d", ErrInvalidInitialState, m.name, m.StateDim(), len(x0))
	}
	for i, v := range x0 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s=%g must be non-negative", ErrInvalidInitialState, m.compartments[i].Symbol, v)
		}
	}
	if total := x0.Sum(); math.Abs(total-m.params.N) > 1e-9*m.params.N {
		return fmt.Errorf("%w: compartments sum to %g, population is %g", ErrInvalidInitialState, total, m.params.N)
	}
	return nil
}
