package truss

import (
	"gonum.org/v1/gonum/mat"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// locate returns the location array (a.x, a.y, b.x, b.y) of a member together
// with its two end nodes.
func locate(m model.Member, nodes []model.Node, dofs DOFMap) ([4]int, model.Node, model.Node, error) {
	var loc [4]int
	ba, ok := dofs.Base(m.NodeA)
	if !ok {
		return loc, model.Node{}, model.Node{}, &UnknownNodeError{Kind: "member", Entity: m.Name, Node: m.NodeA}
	}
	bb, ok := dofs.Base(m.NodeB)
	if !ok {
		return loc, model.Node{}, model.Node{}, &UnknownNodeError{Kind: "member", Entity: m.Name, Node: m.NodeB}
	}
	loc = [4]int{ba, ba + 1, bb, bb + 1}
	return loc, nodes[ba/2], nodes[bb/2], nil
}

// Assemble builds the unconstrained global stiffness matrix by scatter-adding
// every member's local matrix. The result is a fresh accumulator owned by the
// caller. It returns nil for an empty node list.
func Assemble(nodes []model.Node, members []model.Member, dofs DOFMap) (*mat.SymDense, error) {
	n := dofs.Size()
	if n == 0 {
		if len(members) > 0 {
			m := members[0]
			return nil, &UnknownNodeError{Kind: "member", Entity: m.Name, Node: m.NodeA}
		}
		return nil, nil
	}
	k := mat.NewSymDense(n, nil)

	for _, m := range members {
		loc, a, b, err := locate(m, nodes, dofs)
		if err != nil {
			return nil, err
		}
		ke, err := LocalStiffness(m, a, b)
		if err != nil {
			return nil, err
		}
		// Upper triangle only: SetSym writes both halves.
		for i := 0; i < 4; i++ {
			for j := i; j < 4; j++ {
				gi, gj := loc[i], loc[j]
				k.SetSym(gi, gj, k.At(gi, gj)+ke.At(i, j))
			}
		}
	}
	return k, nil
}
