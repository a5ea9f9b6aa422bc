package dynamo

import (
	"context"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sum returns the total of all components, e.g. the population of a compartmental model.
func (s State) Sum() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Func is the right-hand side of dX/dt = f(t, X).
type Func func(t float64, x State) State

// System is an ODE system. The time argument is part of the contract even
// for autonomous systems.
type System interface {
	Derive(t float64, x State) State
	StateDim() int
	Labels() []string
}

type Stepper interface {
	Step(sys System, x State, t, dt float64) State
}

type Solver interface {
	Solve(ctx context.Context, sys System, span Span, x0 State, grid []float64) (*Solution, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

// Span is the closed integration interval [Start, End].
type Span struct {
	Start float64
	End   float64
}

func (s Span) Length() float64 { return s.End - s.Start }

func (s Span) Contains(t float64) bool { return t >= s.Start && t <= s.End }

// Stats counts the work a solver did.
type Stats struct {
	Steps       int `json:"steps"`
	Rejected    int `json:"rejected"`
	Evaluations int `json:"evaluations"`
}

type Solution struct {
	Times  []float64
	States []State
	Labels []string
	Stats  Stats
}

func (s *Solution) Len() int { return len(s.Times) }

// Series returns component i across the whole grid.
func (s *Solution) Series(i int) []float64 {
	out := make([]float64, len(s.States))
	for k, x := range s.States {
		if i < len(x) {
			out[k] = x[i]
		}
	}
	return out
}

// Index returns the position of a label, or -1.
func (s *Solution) Index(label string) int {
	for i, l := range s.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

func (s *Solution) Final() State {
	if len(s.States) == 0 {
		return nil
	}
	return s.States[len(s.States)-1]
}
