package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotruss/internal/diagram"
	"github.com/alexiusacademia/gotruss/internal/export"
	"github.com/alexiusacademia/gotruss/internal/model"
	"github.com/alexiusacademia/gotruss/internal/project"
	"github.com/alexiusacademia/gotruss/internal/truss"
)

var (
	analyzeJSON     string
	analyzeMembers  bool
	analyzeNoPlots  bool
	analyzeScale    float64
	analyzeDecimals int
	analyzeSketch   bool
	analyzeChart    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Solve a truss for displacements, reactions and member forces",
	Long: `Run the direct stiffness analysis of a plane truss.

The model is read from four comma separated text files (nodes, members,
supports, loads) and an optional material file. Lines starting with '#'
are comments.

  nodes      name, x, y
  members    name, node_a, node_b, material
  supports   name, node, fixture, spring_stiffness
             fixture: 0 = x, 1 = y, 2 = both
             spring_stiffness: -1 = fixed, > 0 = spring
  loads      name, node, force_x, force_y
  materials  name, young_modulus, area

Without a material file every member uses E = 210000 and A = 0.1.

Results are written as JSON and as geometry and reaction plots in the
output directory.

Examples:
  # Use ./gotruss.hcl or the default inputs/ and outputs/ folders
  gotruss analyze

  # Explicit files, magnified displaced shape
  gotruss analyze --nodes kp.txt --members conn.txt --supports bcs.txt --loads loads.txt --scale 100

  # Member forces in the JSON export, no plots
  gotruss analyze -p bridge.hcl --member-forces --no-plots`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addInputFlags(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "Results JSON file (overrides the project setting)")
	analyzeCmd.Flags().BoolVar(&analyzeMembers, "member-forces", false, "Include member axial forces in the JSON export")
	analyzeCmd.Flags().BoolVar(&analyzeNoPlots, "no-plots", false, "Skip the geometry and reaction plots")
	analyzeCmd.Flags().Float64Var(&analyzeScale, "scale", 0, "Displacement magnification on the reaction plot")
	analyzeCmd.Flags().IntVar(&analyzeDecimals, "decimals", 0, "Decimals of plot labels")
	analyzeCmd.Flags().BoolVar(&analyzeSketch, "sketch", false, "Print a character sketch of the geometry")
	analyzeCmd.Flags().BoolVar(&analyzeChart, "chart", false, "Print a chart of member axial forces")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("json") {
		p.Output.ResultsJSON = analyzeJSON
	}
	if cmd.Flags().Changed("scale") {
		p.Output.Scale = analyzeScale
	}
	if cmd.Flags().Changed("decimals") {
		if analyzeDecimals < 0 {
			return fmt.Errorf("--decimals must not be negative")
		}
		p.Output.Decimals = analyzeDecimals
	}

	m, err := loadModel(p)
	if err != nil {
		return err
	}
	a, err := truss.NewSolver(slog.Default()).Solve(m)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeSketch {
		fmt.Fprint(out, diagram.DrawASCIITruss(snapshot(m, nil), 60, 16))
	}
	printReport(out, m, a)
	if analyzeChart && len(a.Members) > 0 {
		fmt.Fprintln(out, "AXIAL FORCE CHART:")
		fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
		fmt.Fprintln(out, diagram.AxialChart(a.Members, 10))
	}
	if len(m.Loads) == 0 {
		fmt.Fprintln(out, diagram.Warning("no loads applied, all displacements are zero"))
		fmt.Fprintln(out)
	}

	written, err := writeOutputs(p, m, a)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, diagram.SummaryBox("SUMMARY", summaryLines(a, written)))
	fmt.Fprintln(out)
	return nil
}

func snapshot(m *model.Model, results []model.Result) diagram.Snapshot {
	return diagram.Snapshot{
		Title:    m.Title,
		Nodes:    m.Nodes,
		Members:  m.Members,
		Supports: m.Supports,
		Loads:    m.Loads,
		Results:  results,
	}
}

func printReport(out io.Writer, m *model.Model, a *truss.Analysis) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintf(out, "     2D TRUSS STATIC ANALYSIS - %s\n", m.Title)
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintln(out)

	free := 0
	for _, c := range a.Constraints {
		if c.Kind != truss.Fixed {
			free++
		}
	}
	fmt.Fprintln(out, "MODEL:")
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Nodes:\t%d\n", len(m.Nodes))
	fmt.Fprintf(w, "  Members:\t%d\n", len(m.Members))
	fmt.Fprintf(w, "  Supports:\t%d\n", len(m.Supports))
	fmt.Fprintf(w, "  Loads:\t%d\n", len(m.Loads))
	fmt.Fprintf(w, "  Degrees of freedom:\t%d (%d unrestrained)\n", a.DOFs.Size(), free)
	w.Flush()
	fmt.Fprintln(out)

	fmt.Fprintln(out, "NODAL DISPLACEMENTS:")
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "  Node\tux\tuy\t\n")
	for _, r := range a.Nodes {
		fmt.Fprintf(w, "  %s\t%.6e\t%.6e\t\n", r.Node, r.Ux, r.Uy)
	}
	w.Flush()
	fmt.Fprintln(out)

	fmt.Fprintln(out, "SUPPORT REACTIONS:")
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "  Node\tRx\tRy\tSupport\t\n")
	for _, r := range a.Nodes {
		b, _ := a.DOFs.Base(r.Node)
		cx, cy := a.Constraints[b], a.Constraints[b+1]
		if cx.Kind == truss.Free && cy.Kind == truss.Free {
			continue
		}
		fmt.Fprintf(w, "  %s\t%.3f\t%.3f\tx: %s, y: %s\t\n", r.Node, r.Fx, r.Fy, cx, cy)
	}
	w.Flush()
	fmt.Fprintln(out)

	if len(a.Members) > 0 {
		fmt.Fprintln(out, "MEMBER FORCES:")
		fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(w, "  Member\tLength\tN\tStress\t\t\n")
		for _, mr := range a.Members {
			fmt.Fprintf(w, "  %s\t%.3f\t%.3f\t%.3f\t%s\t\n", mr.Member, mr.Length, mr.Axial, mr.Stress, sense(mr.Axial))
		}
		w.Flush()
		fmt.Fprintln(out)
	}
}

// sense labels an axial force as tension or compression.
func sense(n float64) string {
	switch {
	case math.Abs(n) < 1e-9:
		return "-"
	case n > 0:
		return "T"
	default:
		return "C"
	}
}

// writeOutputs writes the JSON export and plots named by the project and
// returns the paths written.
func writeOutputs(p *project.Project, m *model.Model, a *truss.Analysis) ([]string, error) {
	var written []string
	if name := p.Output.Path(p.Output.ResultsJSON); name != "" {
		var err error
		if analyzeMembers {
			err = export.WriteReportFile(name, export.Report{Title: m.Title, Nodes: a.Nodes, Members: a.Members})
		} else {
			err = export.WriteFile(name, a.Nodes)
		}
		if err != nil {
			return written, err
		}
		written = append(written, name)
	}
	if analyzeNoPlots || len(m.Nodes) == 0 {
		return written, nil
	}

	opts := diagram.Options{
		Width:    p.Output.Width,
		Height:   p.Output.Height,
		Scale:    p.Output.Scale,
		Decimals: p.Output.Decimals,
	}
	if name := p.Output.Path(p.Output.GeometryPlot); name != "" {
		if err := diagram.GeometryPlot(snapshot(m, nil), opts, name); err != nil {
			return written, fmt.Errorf("geometry plot: %w", err)
		}
		written = append(written, name)
	}
	if name := p.Output.Path(p.Output.ReactionPlot); name != "" {
		if err := diagram.ReactionPlot(snapshot(m, a.Nodes), opts, name); err != nil {
			return written, fmt.Errorf("reaction plot: %w", err)
		}
		written = append(written, name)
	}
	return written, nil
}

func summaryLines(a *truss.Analysis, written []string) []string {
	var lines []string
	maxU, at := 0.0, ""
	var sumX, sumY float64
	for _, r := range a.Nodes {
		if u := math.Hypot(r.Ux, r.Uy); u > maxU || at == "" {
			maxU, at = u, r.Node
		}
		sumX += r.Fx
		sumY += r.Fy
	}
	if at != "" {
		lines = append(lines, fmt.Sprintf("Max displacement  %.6e at %s", maxU, at))
	}
	lines = append(lines, fmt.Sprintf("Residual ΣFx, ΣFy  %.3e, %.3e", sumX, sumY))
	if maxN, name := maxAxial(a.Members); name != "" {
		lines = append(lines, fmt.Sprintf("Max |N|           %.3f in %s", maxN, name))
	}
	if len(written) > 0 {
		lines = append(lines, "")
		for _, path := range written {
			lines = append(lines, "Wrote "+path)
		}
	}
	return lines
}

func maxAxial(members []model.MemberResult) (float64, string) {
	best, name := 0.0, ""
	for _, mr := range members {
		if n := math.Abs(mr.Axial); n > best || name == "" {
			best, name = n, mr.Member
		}
	}
	return best, name
}
