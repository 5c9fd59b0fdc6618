package diagram

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// AxialChart plots member axial forces (tension positive) in input order as a
// terminal line chart, followed by the member index legend.
func AxialChart(members []model.MemberResult, height int) string {
	if len(members) == 0 {
		return ""
	}
	if height < 3 {
		height = 3
	}
	series := make([]float64, len(members))
	names := make([]string, len(members))
	for i, m := range members {
		series[i] = m.Axial
		names[i] = fmt.Sprintf("%d=%s", i, m.Member)
	}
	// A single point draws nothing; repeat it so the level shows.
	if len(series) == 1 {
		series = append(series, series[0])
	}

	var sb strings.Builder
	sb.WriteString(asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Precision(2),
		asciigraph.Caption("axial force by member (tension +)"),
	))
	sb.WriteString("\n  ")
	sb.WriteString(strings.Join(names, "  "))
	sb.WriteString("\n")
	return sb.String()
}
