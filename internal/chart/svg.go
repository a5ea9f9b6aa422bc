package chart

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/seirsim/internal/dynamo"
)

type SVGOptions struct {
	Width   int
	Height  int
	Title   string
	XLabel  string
	YLabel  string
	Legends []string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:  800,
		Height: 500,
		Title:  DefaultCaption,
		XLabel: "Time / days",
		YLabel: "Number of people",
	}
}

var strokeColors = []string{"#1e90ff", "#daa520", "#ff4444", "#00cc66"}

const (
	marginLeft   = 70.0
	marginRight  = 160.0
	marginTop    = 50.0
	marginBottom = 60.0
	gridLines    = 5
)

// SVG renders every series of sol as a line chart with axes, grid and legend.
// It returns "" when there is nothing to draw.
func SVG(sol *dynamo.Solution, opts SVGOptions) string {
	if sol == nil || sol.Len() < 2 {
		return ""
	}
	def := DefaultSVGOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	legends := opts.Legends
	if len(legends) != len(sol.Labels) {
		legends = sol.Labels
	}

	minX, maxX := sol.Times[0], sol.Times[sol.Len()-1]
	minY, maxY := 0.0, 0.0
	for _, x := range sol.States {
		for _, v := range x {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	w, h := float64(opts.Width), float64(opts.Height)
	plotW := w - marginLeft - marginRight
	plotH := h - marginTop - marginBottom
	px := func(t float64) float64 { return marginLeft + (t-minX)/rangeX*plotW }
	py := func(v float64) float64 { return marginTop + plotH - (v-minY)/rangeY*plotH }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height))

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#ffffff" font-size="16" text-anchor="middle">%s</text>
`, marginLeft+plotW/2, marginTop/2+6, html.EscapeString(opts.Title)))
	}

	// grid and tick labels
	sb.WriteString(`<g stroke="#333344" stroke-width="1">
`)
	for i := 0; i <= gridLines; i++ {
		f := float64(i) / gridLines
		x := marginLeft + f*plotW
		y := marginTop + plotH - f*plotH
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x, marginTop, x, marginTop+plotH, marginLeft, y, marginLeft+plotW, y))
	}
	sb.WriteString("</g>\n<g fill=\"#aaaabb\">\n")
	for i := 0; i <= gridLines; i++ {
		f := float64(i) / gridLines
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="middle">%s</text>
<text x="%.1f" y="%.1f" text-anchor="end">%s</text>
`, marginLeft+f*plotW, marginTop+plotH+18, tick(minX+f*rangeX),
			marginLeft-8, marginTop+plotH-f*plotH+4, tick(minY+f*rangeY)))
	}
	sb.WriteString("</g>\n")

	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#888899"/>
`, marginLeft, marginTop, plotW, plotH))

	if opts.XLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#ffffff" text-anchor="middle">%s</text>
`, marginLeft+plotW/2, h-15, html.EscapeString(opts.XLabel)))
	}
	if opts.YLabel != "" {
		cy := marginTop + plotH/2
		sb.WriteString(fmt.Sprintf(`<text x="18" y="%.1f" fill="#ffffff" text-anchor="middle" transform="rotate(-90 18 %.1f)">%s</text>
`, cy, cy, html.EscapeString(opts.YLabel)))
	}

	for i := range sol.Labels {
		color := strokeColors[i%len(strokeColors)]
		sb.WriteString(fmt.Sprintf(`<path class="series" fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for j, x := range sol.States {
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(sol.Times[j]), py(x[i])))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(sol.Times[j]), py(x[i])))
			}
		}
		sb.WriteString("\"/>\n")
	}

	// legend
	lx := marginLeft + plotW + 20
	for i, legend := range legends {
		ly := marginTop + 10 + float64(i)*22
		color := strokeColors[i%len(strokeColors)]
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="3"/>
<text x="%.1f" y="%.1f" fill="#ffffff">%s</text>
`, lx, ly, lx+20, ly, color, lx+28, ly+4, html.EscapeString(legend)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func tick(v float64) string {
	if math.Abs(v) >= 1000 {
		return fmt.Sprintf("%.3g", v)
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
