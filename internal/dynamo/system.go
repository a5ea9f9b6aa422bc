package dynamo

import "fmt"

// FuncSystem adapts a bare right-hand side to a System.
type FuncSystem struct {
	fn     Func
	dim    int
	labels []string
}

func NewFuncSystem(fn Func, dim int, labels ...string) *FuncSystem {
	if len(labels) == 0 {
		labels = make([]string, dim)
		for i := range labels {
			labels[i] = fmt.Sprintf("x%d", i)
		}
	}
	return &FuncSystem{fn: fn, dim: dim, labels: labels}
}

func (f *FuncSystem) Derive(t float64, x State) State { return f.fn(t, x) }
func (f *FuncSystem) StateDim() int                   { return f.dim }
func (f *FuncSystem) Labels() []string                { return f.labels }
