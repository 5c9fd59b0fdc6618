package truss

import "github.com/alexiusacademia/gotruss/internal/model"

// DOFMap assigns every node two contiguous degrees of freedom. Node i in input
// order owns DOF 2i (x) and 2i+1 (y).
type DOFMap struct {
	base  map[string]int
	names []string
}

// NewDOFMap builds the map in a single pass over nodes. Later duplicates
// overwrite earlier ones; Solver.Solve rejects duplicates before calling it.
func NewDOFMap(nodes []model.Node) DOFMap {
	m := DOFMap{
		base:  make(map[string]int, len(nodes)),
		names: make([]string, len(nodes)),
	}
	for i, n := range nodes {
		m.base[n.Name] = 2 * i
		m.names[i] = n.Name
	}
	return m
}

// Base returns the x-DOF index of the named node.
func (m DOFMap) Base(name string) (int, bool) {
	b, ok := m.base[name]
	return b, ok
}

// Size is the number of DOFs, twice the node count.
func (m DOFMap) Size() int { return 2 * len(m.names) }

// Node returns the name of the node owning DOF i and the axis (0 = x, 1 = y).
func (m DOFMap) Node(i int) (string, int) {
	return m.names[i/2], i % 2
}

// Label formats DOF i as "name.x" or "name.y".
func (m DOFMap) Label(i int) string {
	name, axis := m.Node(i)
	if axis == 0 {
		return name + ".x"
	}
	return name + ".y"
}
