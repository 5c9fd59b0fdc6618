package diagram

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// Snapshot is the read-only view of a model the plots are drawn from. Results
// is empty until the model has been analysed.
type Snapshot struct {
	Title    string
	Nodes    []model.Node
	Members  []model.Member
	Supports []model.Support
	Loads    []model.Load
	Results  []model.Result
}

// Options controls plot size and result formatting.
type Options struct {
	Width    float64 // points
	Height   float64 // points
	Scale    float64 // displacement magnification on the reaction plot
	Decimals int
}

var (
	memberColor    = color.Black
	nodeColor      = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	fixedColor     = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	springColor    = color.RGBA{R: 255, G: 140, B: 0, A: 255}
	loadColor      = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	displacedColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	undeformed     = color.Gray{Y: 160}
)

// layer is one drawing pass over the model: either the original geometry or
// the displaced shape.
type layer struct {
	nodes   []model.Node
	index   map[string]int
	results []model.Result // nil for the undeformed shape
	scale   float64
}

func newLayer(nodes []model.Node, results []model.Result, scale float64) layer {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.Name] = i
	}
	return layer{nodes: nodes, index: idx, results: results, scale: scale}
}

// at returns the drawn position of the named node.
func (l layer) at(name string) (plotter.XY, bool) {
	i, ok := l.index[name]
	if !ok {
		return plotter.XY{}, false
	}
	xy := plotter.XY{X: l.nodes[i].X, Y: l.nodes[i].Y}
	if l.results != nil {
		xy.X += l.scale * l.results[i].Ux
		xy.Y += l.scale * l.results[i].Uy
	}
	return xy, true
}

// GeometryPlot draws members, nodes, supports and loads.
func GeometryPlot(s Snapshot, opts Options, filename string) error {
	p := newPlot(s.Title, "Geometry")
	geom := newLayer(s.Nodes, nil, 0)
	feature := featureSize(s.Nodes)

	if err := addMembers(p, s.Members, geom, memberColor, false); err != nil {
		return err
	}
	if err := addNodes(p, geom, feature, ""); err != nil {
		return err
	}
	if err := addSupports(p, s.Supports, geom, feature, nil, 0); err != nil {
		return err
	}
	if err := addLoads(p, s.Loads, geom, feature); err != nil {
		return err
	}
	pad(p, s.Nodes, feature)
	return save(p, opts, filename)
}

// ReactionPlot draws the undeformed members, the displaced shape magnified by
// opts.Scale with nodal displacements, and the support reactions.
func ReactionPlot(s Snapshot, opts Options, filename string) error {
	if len(s.Results) != len(s.Nodes) {
		return fmt.Errorf("reaction plot needs results for all %d nodes, have %d", len(s.Nodes), len(s.Results))
	}
	p := newPlot(s.Title, "Reactions")
	geom := newLayer(s.Nodes, nil, 0)
	disp := newLayer(s.Nodes, s.Results, opts.Scale)
	feature := featureSize(s.Nodes)

	if err := addMembers(p, s.Members, geom, undeformed, true); err != nil {
		return err
	}
	if err := addMembers(p, s.Members, disp, displacedColor, false); err != nil {
		return err
	}
	format := fmt.Sprintf("(%%.%[1]de, %%.%[1]de)", opts.Decimals)
	if err := addNodes(p, disp, feature, format); err != nil {
		return err
	}
	if err := addSupports(p, s.Supports, geom, feature, s.Results, opts.Decimals); err != nil {
		return err
	}
	if err := addLoads(p, s.Loads, geom, feature); err != nil {
		return err
	}
	pad(p, s.Nodes, feature)
	return save(p, opts, filename)
}

func newPlot(title, kind string) *plot.Plot {
	p := plot.New()
	p.Title.Text = kind
	if title != "" {
		p.Title.Text = title + " - " + kind
	}
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	return p
}

// featureSize is the drawing length of load arrows and label offsets: a tenth
// of the larger model extent.
func featureSize(nodes []model.Node) float64 {
	minX, maxX, minY, maxY := extent(nodes)
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		return 1
	}
	return span / 10
}

func extent(nodes []model.Node) (minX, maxX, minY, maxY float64) {
	if len(nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = nodes[0].X, nodes[0].X
	minY, maxY = nodes[0].Y, nodes[0].Y
	for _, n := range nodes {
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X)
		minY = math.Min(minY, n.Y)
		maxY = math.Max(maxY, n.Y)
	}
	return minX, maxX, minY, maxY
}

// pad widens the axes so that arrows and labels around the model stay inside.
func pad(p *plot.Plot, nodes []model.Node, feature float64) {
	minX, maxX, minY, maxY := extent(nodes)
	margin := 3 * feature
	p.X.Min = math.Min(p.X.Min, minX-margin)
	p.X.Max = math.Max(p.X.Max, maxX+margin)
	p.Y.Min = math.Min(p.Y.Min, minY-margin)
	p.Y.Max = math.Max(p.Y.Max, maxY+margin)
}

func addMembers(p *plot.Plot, members []model.Member, l layer, c color.Color, dashed bool) error {
	for _, m := range members {
		a, okA := l.at(m.NodeA)
		b, okB := l.at(m.NodeB)
		if !okA || !okB {
			return fmt.Errorf("member %q references an unknown node", m.Name)
		}
		line, err := plotter.NewLine(plotter.XYs{a, b})
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = c
		if dashed {
			line.LineStyle.Width = vg.Points(1)
			line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		}
		p.Add(line)
	}
	return nil
}

// addNodes draws node markers with their names. When format is set the
// displacement of each node is appended to its label.
func addNodes(p *plot.Plot, l layer, feature float64, format string) error {
	if len(l.nodes) == 0 {
		return nil
	}
	pts := make(plotter.XYs, len(l.nodes))
	labels := plotter.XYLabels{XYs: make([]plotter.XY, len(l.nodes)), Labels: make([]string, len(l.nodes))}
	for i, n := range l.nodes {
		xy, _ := l.at(n.Name)
		pts[i] = xy
		labels.XYs[i] = plotter.XY{X: xy.X + feature/4, Y: xy.Y + feature/4}
		labels.Labels[i] = n.Name
		if format != "" {
			labels.Labels[i] += " " + fmt.Sprintf(format, l.results[i].Ux, l.results[i].Uy)
		}
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = nodeColor
	sc.GlyphStyle.Radius = vg.Points(4)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)

	lbl, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	p.Add(lbl)
	return nil
}

// addSupports marks fixed supports with filled triangles and springs with
// rings at their undeformed position. When results are given, the reaction at
// each supported node is labelled once.
func addSupports(p *plot.Plot, supports []model.Support, l layer, feature float64, results []model.Result, decimals int) error {
	labelled := map[string]bool{}
	for _, s := range supports {
		xy, ok := l.at(s.Node)
		if !ok {
			return fmt.Errorf("support %q references an unknown node", s.Name)
		}
		sc, err := plotter.NewScatter(plotter.XYs{{X: xy.X, Y: xy.Y - feature/3}})
		if err != nil {
			return err
		}
		sc.GlyphStyle.Radius = vg.Points(7)
		if s.Mode.Spring {
			sc.GlyphStyle.Color = springColor
			sc.GlyphStyle.Shape = draw.RingGlyph{}
		} else {
			sc.GlyphStyle.Color = fixedColor
			sc.GlyphStyle.Shape = draw.PyramidGlyph{}
		}
		p.Add(sc)

		if results == nil || labelled[s.Node] {
			continue
		}
		labelled[s.Node] = true
		r := results[l.index[s.Node]]
		text := fmt.Sprintf("R=(%.*f, %.*f)", decimals, r.Fx, decimals, r.Fy)
		lbl, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: xy.X + feature/4, Y: xy.Y - feature}},
			Labels: []string{text},
		})
		if err != nil {
			return err
		}
		p.Add(lbl)
	}
	return nil
}

// addLoads draws each load as an arrow of length feature pointing at its node.
func addLoads(p *plot.Plot, loads []model.Load, l layer, feature float64) error {
	for _, ld := range loads {
		tip, ok := l.at(ld.Node)
		if !ok {
			return fmt.Errorf("load %q references an unknown node", ld.Name)
		}
		mag := math.Hypot(ld.ForceX, ld.ForceY)
		if mag == 0 {
			continue
		}
		dx, dy := ld.ForceX/mag, ld.ForceY/mag
		tail := plotter.XY{X: tip.X - feature*dx, Y: tip.Y - feature*dy}

		// Shaft plus two barbs at +-25 degrees.
		head := feature / 4
		const barb = 25 * math.Pi / 180
		segments := []plotter.XYs{{tail, tip}}
		for _, a := range []float64{barb, -barb} {
			bx := -(dx*math.Cos(a) - dy*math.Sin(a))
			by := -(dx*math.Sin(a) + dy*math.Cos(a))
			segments = append(segments, plotter.XYs{tip, {X: tip.X + head*bx, Y: tip.Y + head*by}})
		}
		for _, seg := range segments {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return err
			}
			line.LineStyle.Width = vg.Points(1.5)
			line.LineStyle.Color = loadColor
			p.Add(line)
		}

		lbl, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{tail},
			Labels: []string{fmt.Sprintf("%s=%g", ld.Name, mag)},
		})
		if err != nil {
			return err
		}
		p.Add(lbl)
	}
	return nil
}

// save writes the plot in the format given by the file extension, creating the
// parent directory if needed. Unknown extensions get ".png" appended.
func save(p *plot.Plot, opts Options, filename string) error {
	width := vg.Points(opts.Width)
	height := vg.Points(opts.Height)
	if opts.Width <= 0 || opts.Height <= 0 {
		width, height = 8*vg.Inch, 6*vg.Inch
	}

	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf", ".jpg", ".jpeg", ".tif", ".tiff", ".eps":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}
