package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/seirsim/internal/experiment"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Width(20)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
)

// Summary renders the headline numbers of a run as a bordered panel.
func Summary(res *experiment.Result) string {
	p := res.Model.Params()
	sol := res.Solution
	m := res.Metrics

	rows := [][2]string{
		{"model", res.Model.Name()},
		{"solver", res.Config.Solver},
		{"params", p.String()},
		{"R0", formatR0(p.R0())},
	}
	if v, ok := m["peak_I"]; ok {
		rows = append(rows, [2]string{"peak infectious", fmt.Sprintf("%.4f at t=%.2f", v, m["peak_time_I"])})
	}
	if v, ok := m["final_R"]; ok {
		rows = append(rows, [2]string{"final size", fmt.Sprintf("%.4f (%.2f%%)", v, 100*v/p.N)})
	}
	rows = append(rows,
		[2]string{"conservation drift", fmt.Sprintf("%.3e", m["conservation_drift"])},
		[2]string{"min compartment", fmt.Sprintf("%.3e", m["min_compartment"])},
		[2]string{"steps", fmt.Sprintf("%d accepted, %d rejected", sol.Stats.Steps, sol.Stats.Rejected)},
		[2]string{"evaluations", fmt.Sprintf("%d", sol.Stats.Evaluations)},
		[2]string{"elapsed", res.Elapsed.String()},
	)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("run " + res.ID))
	sb.WriteString("\n")
	for i, row := range rows {
		sb.WriteString(labelStyle.Render(row[0]))
		sb.WriteString(valueStyle.Render(row[1]))
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}
	return panelStyle.Render(sb.String())
}

func formatR0(r0 float64) string {
	if math.IsInf(r0, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.3f", r0)
}
