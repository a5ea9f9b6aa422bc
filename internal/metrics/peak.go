package metrics

import "github.com/san-kum/seirsim/internal/dynamo"

// Peak records the maximum of one component.
type Peak struct {
	name    string
	index   int
	value   float64
	at      float64
	samples int
}

func NewPeak(label string, index int) *Peak {
	return &Peak{name: "peak_" + label, index: index}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, t float64) {
	if p.index >= len(x) {
		return
	}
	if p.samples == 0 || x[p.index] > p.value {
		p.value = x[p.index]
		p.at = t
	}
	p.samples++
}

func (p *Peak) Value() float64 { return p.value }

// At returns the time the peak was first reached.
func (p *Peak) At() float64 { return p.at }

func (p *Peak) Reset() {
	p.value = 0
	p.at = 0
	p.samples = 0
}

// PeakTime reports the time of a component's maximum.
type PeakTime struct {
	Peak
}

func NewPeakTime(label string, index int) *PeakTime {
	return &PeakTime{Peak: Peak{name: "peak_time_" + label, index: index}}
}

func (p *PeakTime) Value() float64 { return p.at }

// Final records the last observed value of one component.
type Final struct {
	name  string
	index int
	value float64
}

func NewFinal(label string, index int) *Final {
	return &Final{name: "final_" + label, index: index}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(x dynamo.State, t float64) {
	if f.index < len(x) {
		f.value = x[f.index]
	}
}

func (f *Final) Value() float64 { return f.value }

func (f *Final) Reset() { f.value = 0 }
