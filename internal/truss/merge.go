package truss

import "github.com/alexiusacademia/gotruss/internal/model"

// MergeResults copies displacements and recovered forces onto a result record
// per node, in node order.
func MergeResults(dofs DOFMap, nodes []model.Node, u, f []float64) []model.Result {
	results := make([]model.Result, 0, len(nodes))
	for _, n := range nodes {
		b, _ := dofs.Base(n.Name)
		results = append(results, model.Result{
			Node: n.Name,
			X:    n.X,
			Y:    n.Y,
			Fx:   f[b],
			Fy:   f[b+1],
			Ux:   u[b],
			Uy:   u[b+1],
		})
	}
	return results
}

// MemberForces computes the axial force and stress of each member from the
// displacement vector. Members are assumed valid; Assemble has already checked
// them.
func MemberForces(nodes []model.Node, members []model.Member, dofs DOFMap, u []float64) []model.MemberResult {
	out := make([]model.MemberResult, 0, len(members))
	for _, m := range members {
		loc, a, b, err := locate(m, nodes, dofs)
		if err != nil {
			continue
		}
		bar, err := NewBar(m.Name, a, b)
		if err != nil {
			continue
		}
		elong := bar.C*(u[loc[2]]-u[loc[0]]) + bar.S*(u[loc[3]]-u[loc[1]])
		n := m.YoungModulus * m.Area / bar.Length * elong
		out = append(out, model.MemberResult{
			Member: m.Name,
			Length: bar.Length,
			Axial:  n,
			Stress: n / m.Area,
		})
	}
	return out
}
