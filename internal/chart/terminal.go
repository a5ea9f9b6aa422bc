package chart

import (
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/seirsim/internal/dynamo"
)

const DefaultCaption = "SEIR Model"

type TerminalOptions struct {
	Height  int
	Width   int
	Caption string
	// Legends default to the solution labels.
	Legends []string
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.DodgerBlue,
	asciigraph.Goldenrod,
	asciigraph.Red,
	asciigraph.Green,
}

// Terminal plots every series of sol on one ASCII chart.
func Terminal(sol *dynamo.Solution, opts TerminalOptions) string {
	if sol == nil || sol.Len() == 0 {
		return ""
	}
	if opts.Height <= 0 {
		opts.Height = 15
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Caption == "" {
		opts.Caption = DefaultCaption
	}
	legends := opts.Legends
	if len(legends) != len(sol.Labels) {
		legends = sol.Labels
	}

	data := make([][]float64, len(sol.Labels))
	colors := make([]asciigraph.AnsiColor, len(sol.Labels))
	for i := range sol.Labels {
		data[i] = sol.Series(i)
		colors[i] = seriesColors[i%len(seriesColors)]
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(opts.Caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	)
}
