package metrics

import (
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
)

// Conservation tracks the largest relative deviation of the state total
// from an expected value, max |sum(x) - total| / total.
type Conservation struct {
	name     string
	total    float64
	maxDrift float64
}

func NewConservation(total float64) *Conservation {
	return &Conservation{
		name:  "conservation_drift",
		total: total,
	}
}

func (c *Conservation) Name() string { return c.name }

func (c *Conservation) Observe(x dynamo.State, t float64) {
	if c.total == 0 {
		return
	}
	drift := math.Abs(x.Sum()-c.total) / math.Abs(c.total)
	c.maxDrift = math.Max(c.maxDrift, drift)
}

func (c *Conservation) Value() float64 { return c.maxDrift }

func (c *Conservation) Reset() { c.maxDrift = 0 }

// MinCompartment records the smallest component seen in any state, which
// goes below zero when the solver overshoots.
type MinCompartment struct {
	name    string
	min     float64
	samples int
}

func NewMinCompartment() *MinCompartment {
	return &MinCompartment{name: "min_compartment"}
}

func (m *MinCompartment) Name() string { return m.name }

func (m *MinCompartment) Observe(x dynamo.State, t float64) {
	for _, v := range x {
		if m.samples == 0 || v < m.min {
			m.min = v
		}
		m.samples++
	}
}

func (m *MinCompartment) Value() float64 { return m.min }

func (m *MinCompartment) Reset() {
	m.min = 0
	m.samples = 0
}
