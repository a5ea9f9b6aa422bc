package metrics

import "github.com/san-kum/seirsim/internal/dynamo"

// Evaluate resets every metric, feeds it the whole solution in time order
// and collects the values by name.
func Evaluate(sol *dynamo.Solution, ms ...dynamo.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
	}
	for i, x := range sol.States {
		for _, m := range ms {
			m.Observe(x, sol.Times[i])
		}
	}
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
