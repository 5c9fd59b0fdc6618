package diagram

import (
	"fmt"
	"math"
	"strings"
)

// Sketch characters.
const (
	blank      = ' '
	memberRune = '·'
	nodeRune   = '●'
	fixedRune  = '▲'
	springRune = '◊'
)

// DrawASCIITruss renders the model geometry on a cols x rows character grid.
// Nodes carry their names, supported nodes are marked below the node, and a
// legend lists the loads.
func DrawASCIITruss(s Snapshot, cols, rows int) string {
	var sb strings.Builder
	if len(s.Nodes) == 0 {
		return "\n  (empty model)\n"
	}
	if cols < 10 {
		cols = 10
	}
	if rows < 5 {
		rows = 5
	}

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(blank), cols))
	}

	minX, maxX, minY, maxY := extent(s.Nodes)
	spanX, spanY := maxX-minX, maxY-minY
	// Keep a margin of one column for names and one row for support marks.
	cell := func(x, y float64) (int, int) {
		c, r := 1, rows-2
		if spanX > 0 {
			c = 1 + int(math.Round((x-minX)/spanX*float64(cols-4)))
		}
		if spanY > 0 {
			r = rows - 2 - int(math.Round((y-minY)/spanY*float64(rows-3)))
		}
		return c, r
	}
	put := func(c, r int, ch rune) {
		if r >= 0 && r < rows && c >= 0 && c < cols {
			grid[r][c] = ch
		}
	}

	geom := newLayer(s.Nodes, nil, 0)
	for _, m := range s.Members {
		a, okA := geom.at(m.NodeA)
		b, okB := geom.at(m.NodeB)
		if !okA || !okB {
			continue
		}
		c0, r0 := cell(a.X, a.Y)
		c1, r1 := cell(b.X, b.Y)
		bresenham(c0, r0, c1, r1, func(c, r int) { put(c, r, memberRune) })
	}
	for _, sup := range s.Supports {
		xy, ok := geom.at(sup.Node)
		if !ok {
			continue
		}
		c, r := cell(xy.X, xy.Y)
		mark := fixedRune
		if sup.Mode.Spring {
			mark = springRune
		}
		put(c, r+1, mark)
	}
	for _, n := range s.Nodes {
		c, r := cell(n.X, n.Y)
		put(c, r, nodeRune)
		for i, ch := range n.Name {
			if c+1+i >= cols-1 {
				break
			}
			put(c+1+i, r, ch)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  ┌%s┐\n", strings.Repeat("─", cols)))
	for _, row := range grid {
		sb.WriteString(fmt.Sprintf("  │%s│\n", string(row)))
	}
	sb.WriteString(fmt.Sprintf("  └%s┘\n", strings.Repeat("─", cols)))
	sb.WriteString(fmt.Sprintf("  %c node   %c fixed   %c spring\n", nodeRune, fixedRune, springRune))
	for _, ld := range s.Loads {
		sb.WriteString(fmt.Sprintf("  → %s at %s: (%g, %g)\n", ld.Name, ld.Node, ld.ForceX, ld.ForceY))
	}
	return sb.String()
}

// bresenham visits every grid cell between two cells (Bresenham).
func bresenham(c0, r0, c1, r1 int, visit func(c, r int)) {
	dc := abs(c1 - c0)
	dr := -abs(r1 - r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}
	e := dc + dr
	for {
		visit(c0, r0)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
