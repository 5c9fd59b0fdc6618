package truss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gotruss/internal/model"
)

const tol = 1e-9

func bar(name, a, b string) model.Member {
	return model.Member{Name: name, NodeA: a, NodeB: b, YoungModulus: 210000, Area: 0.1}
}

func cantilever() *model.Model {
	return &model.Model{
		Nodes:    []model.Node{{Name: "A", X: 0, Y: 0}, {Name: "B", X: 3, Y: 0}},
		Members:  []model.Member{bar("AB", "A", "B")},
		Supports: []model.Support{{Name: "S1", Node: "A", Direction: model.DirBoth, Mode: model.Fixed()}},
		Loads:    []model.Load{{Name: "P", Node: "B", ForceX: 1000}},
	}
}

// Two-bay Pratt-style truss: pinned at A, roller at E, loaded at the top chord.
func bridge() *model.Model {
	return &model.Model{
		Nodes: []model.Node{
			{Name: "A", X: 0, Y: 0},
			{Name: "B", X: 4, Y: 0},
			{Name: "C", X: 8, Y: 0},
			{Name: "D", X: 4, Y: 3},
			{Name: "E", X: 12, Y: 0},
			{Name: "F", X: 8, Y: 3},
		},
		Members: []model.Member{
			bar("AB", "A", "B"), bar("BC", "B", "C"), bar("CE", "C", "E"),
			bar("AD", "A", "D"), bar("DF", "D", "F"), bar("FE", "F", "E"),
			bar("BD", "B", "D"), bar("CF", "C", "F"), bar("DC", "D", "C"),
		},
		Supports: []model.Support{
			{Name: "pin", Node: "A", Direction: model.DirBoth, Mode: model.Fixed()},
			{Name: "roller", Node: "E", Direction: model.DirY, Mode: model.Fixed()},
		},
		Loads: []model.Load{
			{Name: "P1", Node: "D", ForceX: 200, ForceY: -1000},
			{Name: "P2", Node: "F", ForceY: -500},
			{Name: "P3", Node: "F", ForceY: -500},
		},
	}
}

func TestCantilever(t *testing.T) {
	a, err := (&Solver{}).Solve(cantilever())
	require.NoError(t, err)

	b := a.Nodes[1]
	assert.InDelta(t, 1000*3/(210000*0.1), b.Ux, tol)
	assert.InDelta(t, 0.142857142857, b.Ux, 1e-12)
	assert.Equal(t, 0.0, b.Uy)
	assert.InDelta(t, 1000.0, b.Fx, tol)
	assert.InDelta(t, 0.0, b.Fy, tol)

	fx, fy, ok := a.Reaction("A")
	require.True(t, ok)
	assert.InDelta(t, -1000.0, fx, tol)
	assert.InDelta(t, 0.0, fy, tol)

	require.Len(t, a.Members, 1)
	assert.InDelta(t, 1000.0, a.Members[0].Axial, 1e-6)
	assert.InDelta(t, 10000.0, a.Members[0].Stress, 1e-5)
}

func TestLoadOnDOFWithoutStiffness(t *testing.T) {
	// A horizontal bar gives B's y DOF no stiffness: unloaded it stays at
	// zero, loaded it cannot be solved.
	m := cantilever()
	m.Loads[0].ForceY = 10
	_, err := (&Solver{}).Solve(m)

	var serr *SingularSystemError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "B.y", serr.Label)
	assert.Contains(t, err.Error(), "B.y")
}

func TestSpringSupport(t *testing.T) {
	m := cantilever()
	m.Supports = []model.Support{
		{Name: "spring", Node: "A", Direction: model.DirX, Mode: model.Spring(1000)},
		{Name: "guideA", Node: "A", Direction: model.DirY, Mode: model.Fixed()},
		{Name: "guideB", Node: "B", Direction: model.DirY, Mode: model.Fixed()},
	}

	a, err := (&Solver{}).Solve(m)
	require.NoError(t, err)

	kBar := 210000 * 0.1 / 3
	assert.InDelta(t, 1000.0/1000.0, a.Nodes[0].Ux, tol)
	assert.InDelta(t, 1.0+1000.0/kBar, a.Nodes[1].Ux, tol)
	assert.Equal(t, Spring, a.Constraints[0].Kind)

	// The structure pushes on the spring with the full load; the unaugmented
	// matrix reports it at the spring DOF.
	assert.InDelta(t, -1000.0, a.Nodes[0].Fx, 1e-6)
	assert.InDelta(t, 1000.0, a.Nodes[1].Fx, 1e-6)
}

func TestSpringOnlySupport(t *testing.T) {
	// A single horizontal spring at A is the only support; both y DOFs have
	// no stiffness and stay at zero.
	m := cantilever()
	m.Supports = []model.Support{
		{Name: "spring", Node: "A", Direction: model.DirX, Mode: model.Spring(1000)},
	}

	a, err := (&Solver{}).Solve(m)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, a.Nodes[0].Ux, tol)
	assert.InDelta(t, 1.0+1.0/7.0, a.Nodes[1].Ux, tol)
	assert.Equal(t, 0.0, a.Nodes[0].Uy)
	assert.Equal(t, 0.0, a.Nodes[1].Uy)
	assert.InDelta(t, -1000.0, a.Nodes[0].Fx, 1e-6)
	assert.InDelta(t, 1000.0, a.Nodes[1].Fx, 1e-6)
	assert.Equal(t, []Constraint{{Kind: Spring, Stiffness: 1000}, {}, {}, {}}, a.Constraints)
}

func TestSoftSpringIsNotSingular(t *testing.T) {
	tests := []struct {
		name   string
		e      float64
		area   float64
		spring float64
	}{
		{"soft spring", 210000, 0.1, 1e-7},
		{"SI units", 210e9, 0.01, 1e-2}, // EA/L = 7e8
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := cantilever()
			m.Members[0].YoungModulus = tt.e
			m.Members[0].Area = tt.area
			m.Supports = []model.Support{
				{Name: "spring", Node: "A", Direction: model.DirX, Mode: model.Spring(tt.spring)},
			}

			a, err := (&Solver{}).Solve(m)
			require.NoError(t, err)

			uA := 1000 / tt.spring
			assert.InEpsilon(t, uA, a.Nodes[0].Ux, 1e-4)
			assert.InEpsilon(t, uA, a.Nodes[1].Ux, 1e-4)
			assert.Greater(t, a.Nodes[1].Ux, a.Nodes[0].Ux)
		})
	}
}

func TestAugmentSpringsLeavesOriginalUntouched(t *testing.T) {
	m := cantilever()
	dofs := NewDOFMap(m.Nodes)
	k, err := Assemble(m.Nodes, m.Members, dofs)
	require.NoError(t, err)
	before := k.At(0, 0)

	cons := []Constraint{{Kind: Spring, Stiffness: 1000}, {}, {}, {}}
	work := augmentSprings(k, cons)

	assert.Equal(t, before, k.At(0, 0))
	assert.InDelta(t, before+1000, work.At(0, 0), tol)
	assert.Equal(t, k.At(0, 2), work.At(0, 2))
}

func TestSymmetry(t *testing.T) {
	m := bridge()
	dofs := NewDOFMap(m.Nodes)
	k, err := Assemble(m.Nodes, m.Members, dofs)
	require.NoError(t, err)

	n := dofs.Size()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			require.Equal(t, k.At(i, j), k.At(j, i), "K[%d][%d]", i, j)
		}
	}
}

func TestAssembleAccumulatesSharedNodes(t *testing.T) {
	// Two collinear bars meeting at B: B.x receives stiffness from both.
	nodes := []model.Node{{Name: "A"}, {Name: "B", X: 2}, {Name: "C", X: 4}}
	members := []model.Member{bar("AB", "A", "B"), bar("BC", "B", "C")}
	dofs := NewDOFMap(nodes)

	k, err := Assemble(nodes, members, dofs)
	require.NoError(t, err)

	ea := 210000 * 0.1 / 2
	assert.InDelta(t, ea, k.At(0, 0), tol)
	assert.InDelta(t, 2*ea, k.At(2, 2), tol)
	assert.InDelta(t, -ea, k.At(2, 4), tol)
	assert.Equal(t, 0.0, k.At(0, 4))
}

func TestEquilibrium(t *testing.T) {
	m := bridge()
	a, err := (&Solver{}).Solve(m)
	require.NoError(t, err)

	var sumX, sumY float64
	for _, r := range a.Nodes {
		sumX += r.Fx
		sumY += r.Fy
	}
	assert.InDelta(t, 0.0, sumX, 1e-6)
	assert.InDelta(t, 0.0, sumY, 1e-6)

	// Free DOFs reproduce the applied loads.
	for i, c := range a.Constraints {
		if c.Kind == Free {
			assert.InDelta(t, a.Loads[i], a.Forces[i], 1e-6, a.DOFs.Label(i))
		}
	}

	// Reactions balance the applied loads.
	var rx, ry, px, py float64
	for _, l := range m.Loads {
		px += l.ForceX
		py += l.ForceY
	}
	ax, ay, _ := a.Reaction("A")
	_, ey, _ := a.Reaction("E")
	rx, ry = ax, ay+ey
	assert.InDelta(t, -px, rx, 1e-6)
	assert.InDelta(t, -py, ry, 1e-6)
}

func TestFixedDOFsHaveZeroDisplacement(t *testing.T) {
	a, err := (&Solver{}).Solve(bridge())
	require.NoError(t, err)

	fixed := 0
	for i, c := range a.Constraints {
		if c.Kind == Fixed {
			fixed++
			assert.Equal(t, 0.0, a.Displacement[i], a.DOFs.Label(i))
		}
	}
	assert.Equal(t, 3, fixed)
}

func TestDeterminism(t *testing.T) {
	s := &Solver{}
	first, err := s.Solve(bridge())
	require.NoError(t, err)
	second, err := s.Solve(bridge())
	require.NoError(t, err)

	assert.Equal(t, first.Stiffness.RawSymmetric().Data, second.Stiffness.RawSymmetric().Data)
	assert.Equal(t, first.Displacement, second.Displacement)
	assert.Equal(t, first.Forces, second.Forces)
}

func TestModelIsNotMutated(t *testing.T) {
	m := bridge()
	nodes := append([]model.Node(nil), m.Nodes...)
	_, err := (&Solver{}).Solve(m)
	require.NoError(t, err)
	assert.Equal(t, nodes, m.Nodes)
}

func TestLoadsSuperpose(t *testing.T) {
	m := cantilever()
	m.Loads = []model.Load{
		{Name: "P1", Node: "B", ForceX: 400},
		{Name: "P2", Node: "B", ForceX: 600, ForceY: 0},
	}
	a, err := (&Solver{}).Solve(m)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, a.Loads[2], tol)
	assert.InDelta(t, 1000*3/(210000*0.1), a.Nodes[1].Ux, tol)
}

func TestSupportsLastAppliedWins(t *testing.T) {
	dofs := NewDOFMap([]model.Node{{Name: "A"}})
	cons, err := EncodeConstraints([]model.Support{
		{Name: "s1", Node: "A", Direction: model.DirBoth, Mode: model.Fixed()},
		{Name: "s2", Node: "A", Direction: model.DirY, Mode: model.Spring(50)},
	}, dofs)
	require.NoError(t, err)
	assert.Equal(t, []Constraint{{Kind: Fixed}, {Kind: Spring, Stiffness: 50}}, cons)
}

func TestInvalidSpring(t *testing.T) {
	dofs := NewDOFMap([]model.Node{{Name: "A"}})
	_, err := EncodeConstraints([]model.Support{
		{Name: "s1", Node: "A", Direction: model.DirX, Mode: model.Spring(0)},
	}, dofs)

	var ierr *InvalidSupportError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "s1", ierr.Support)
}

func TestDegenerateGeometry(t *testing.T) {
	m := cantilever()
	m.Nodes[1] = model.Node{Name: "B", X: 0, Y: 0}
	_, err := (&Solver{}).Solve(m)

	var derr *DegenerateGeometryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "AB", derr.Member)

	_, err = NewBar("inf", model.Node{}, model.Node{X: math.Inf(1)})
	require.ErrorAs(t, err, &derr)
}

func TestInvalidSection(t *testing.T) {
	m := cantilever()
	m.Members[0].Area = 0
	_, err := (&Solver{}).Solve(m)

	var serr *InvalidSectionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "AB", serr.Member)
}

func TestUnknownNodeReference(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *model.Model)
		kind   string
		entity string
	}{
		{"member", func(m *model.Model) { m.Members[0].NodeB = "Z" }, "member", "AB"},
		{"support", func(m *model.Model) { m.Supports[0].Node = "Z" }, "support", "S1"},
		{"load", func(m *model.Model) { m.Loads[0].Node = "Z" }, "load", "P"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := cantilever()
			tt.mutate(m)
			_, err := (&Solver{}).Solve(m)

			var uerr *UnknownNodeError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, tt.kind, uerr.Kind)
			assert.Equal(t, tt.entity, uerr.Entity)
			assert.Equal(t, "Z", uerr.Node)
		})
	}
}

func TestMechanismDetection(t *testing.T) {
	m := cantilever()
	m.Supports = nil
	_, err := (&Solver{}).Solve(m)

	var serr *SingularSystemError
	require.ErrorAs(t, err, &serr)
}

func TestRotatedMechanism(t *testing.T) {
	// A square without a diagonal racks sideways.
	m := &model.Model{
		Nodes: []model.Node{{Name: "A"}, {Name: "B", X: 1}, {Name: "C", X: 1, Y: 1}, {Name: "D", Y: 1}},
		Members: []model.Member{
			bar("AB", "A", "B"), bar("BC", "B", "C"), bar("CD", "C", "D"), bar("DA", "D", "A"),
		},
		Supports: []model.Support{
			{Name: "pin", Node: "A", Direction: model.DirBoth, Mode: model.Fixed()},
			{Name: "roller", Node: "B", Direction: model.DirY, Mode: model.Fixed()},
		},
		Loads: []model.Load{{Name: "H", Node: "D", ForceX: 10}},
	}
	_, err := (&Solver{}).Solve(m)

	var serr *SingularSystemError
	require.ErrorAs(t, err, &serr)

	// Bracing it makes the system solvable.
	m.Members = append(m.Members, bar("AC", "A", "C"))
	_, err = (&Solver{}).Solve(m)
	require.NoError(t, err)
}

func TestEmptyModel(t *testing.T) {
	a, err := (&Solver{}).Solve(&model.Model{})
	require.NoError(t, err)
	assert.Empty(t, a.Displacement)
	assert.Empty(t, a.Forces)
	assert.Empty(t, a.Nodes)
	assert.Nil(t, a.Stiffness)
}

func TestAllFixed(t *testing.T) {
	m := cantilever()
	m.Supports = append(m.Supports, model.Support{Name: "S2", Node: "B", Direction: model.DirBoth, Mode: model.Fixed()})
	a, err := (&Solver{}).Solve(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, a.Displacement)
	assert.Equal(t, []float64{0, 0, 0, 0}, a.Forces)
}

func TestDuplicateNode(t *testing.T) {
	m := cantilever()
	m.Nodes = append(m.Nodes, model.Node{Name: "A", X: 5})
	_, err := (&Solver{}).Solve(m)

	var derr *DuplicateNodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "A", derr.Node)
}

func TestReducePreservesOrder(t *testing.T) {
	m := bridge()
	dofs := NewDOFMap(m.Nodes)
	k, err := Assemble(m.Nodes, m.Members, dofs)
	require.NoError(t, err)
	cons, err := EncodeConstraints(m.Supports, dofs)
	require.NoError(t, err)
	f, err := LoadVector(m.Loads, dofs)
	require.NoError(t, err)

	keep := retainedDOFs(cons)
	require.Len(t, keep, dofs.Size()-3)
	kr, fr := reduce(k, f, keep)
	for r := 1; r < len(keep); r++ {
		require.Less(t, keep[r-1], keep[r])
	}
	for r, gi := range keep {
		assert.Equal(t, f[gi], fr.AtVec(r))
		for c, gj := range keep {
			assert.Equal(t, k.At(gi, gj), kr.At(r, c))
		}
	}
}
