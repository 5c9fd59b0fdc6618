package truss

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// LoadVector accumulates the point loads into a vector of length dofs.Size().
// Loads on the same node add up.
func LoadVector(loads []model.Load, dofs DOFMap) ([]float64, error) {
	f := make([]float64, dofs.Size())
	for _, l := range loads {
		base, ok := dofs.Base(l.Node)
		if !ok {
			return nil, &UnknownNodeError{Kind: "load", Entity: l.Name, Node: l.Node}
		}
		f[base] += l.ForceX
		f[base+1] += l.ForceY
	}
	return f, nil
}

// pivotTolerance is the smallest ratio between a Cholesky pivot and the
// matching diagonal entry before the DOF is treated as unrestrained. It sits a
// few dozen ulps above zero: a pivot that small is cancellation noise, while
// soft springs on stiff members stay well above it.
const pivotTolerance = 1e-14

// Solve finds the full displacement vector of k·u = f under the constraints.
// Springs are added to the diagonal of a working copy of k, fixed DOFs are
// condensed out, the remaining system is solved and the result expanded back
// with zeros at every fixed DOF. k itself is left untouched.
//
// A retained DOF with no stiffness at all (for instance the transverse DOF at
// the free end of a single bar) is left out of the factorization and keeps a
// zero displacement as long as it carries no load.
func Solve(k *mat.SymDense, f []float64, cons []Constraint) ([]float64, error) {
	n := len(cons)
	if len(f) != n {
		return nil, fmt.Errorf("load vector has %d entries, expected %d", len(f), n)
	}
	if n == 0 {
		return []float64{}, nil
	}
	if r, _ := k.Dims(); r != n {
		return nil, fmt.Errorf("stiffness matrix is %dx%d, expected %dx%d", r, r, n, n)
	}

	work := augmentSprings(k, cons)
	keep, err := activeDOFs(work, f, retainedDOFs(cons))
	if err != nil {
		return nil, err
	}
	kr, fr := reduce(work, f, keep)
	ur, err := solveReduced(kr, fr, keep)
	if err != nil {
		return nil, err
	}
	return expand(ur, keep, n), nil
}

// augmentSprings returns a copy of k with every spring stiffness added to its
// DOF's diagonal entry.
func augmentSprings(k *mat.SymDense, cons []Constraint) *mat.SymDense {
	n := len(cons)
	work := mat.NewSymDense(n, nil)
	work.CopySym(k)
	for i, c := range cons {
		if c.Kind == Spring {
			work.SetSym(i, i, work.At(i, i)+c.Stiffness)
		}
	}
	return work
}

// retainedDOFs lists, in increasing order, every DOF that is not fixed.
func retainedDOFs(cons []Constraint) []int {
	keep := make([]int, 0, len(cons))
	for i, c := range cons {
		if c.Kind != Fixed {
			keep = append(keep, i)
		}
	}
	return keep
}

// activeDOFs drops the retained DOFs whose row of k is identically zero. Such
// a DOF cannot resist anything, so a load on it makes the system singular.
func activeDOFs(k *mat.SymDense, f []float64, retained []int) ([]int, error) {
	n := k.SymmetricDim()
	active := make([]int, 0, len(retained))
	for _, i := range retained {
		empty := true
		for j := 0; j < n; j++ {
			if k.At(i, j) != 0 {
				empty = false
				break
			}
		}
		if !empty {
			active = append(active, i)
			continue
		}
		if f[i] != 0 {
			return nil, &SingularSystemError{
				Size:   len(retained),
				Cond:   math.Inf(1),
				DOF:    i,
				Reason: fmt.Sprintf("load %g acts on a DOF without stiffness", f[i]),
			}
		}
	}
	return active, nil
}

// reduce extracts the submatrix and subvector of the DOFs in keep, preserving
// their relative order: keep[r] is the global DOF of reduced index r.
func reduce(k *mat.SymDense, f []float64, keep []int) (*mat.SymDense, *mat.VecDense) {
	m := len(keep)
	if m == 0 {
		return nil, nil
	}

	kr := mat.NewSymDense(m, nil)
	fr := mat.NewVecDense(m, nil)
	for r, gi := range keep {
		fr.SetVec(r, f[gi])
		for c := r; c < m; c++ {
			kr.SetSym(r, c, k.At(gi, keep[c]))
		}
	}
	return kr, fr
}

// solveReduced factorizes kr and solves kr·u = fr. A nil kr (nothing left to
// solve for) has the empty solution.
func solveReduced(kr *mat.SymDense, fr *mat.VecDense, keep []int) ([]float64, error) {
	if kr == nil {
		return nil, nil
	}
	m := kr.SymmetricDim()

	var chol mat.Cholesky
	if ok := chol.Factorize(kr); !ok {
		return nil, &SingularSystemError{Size: m, Cond: math.Inf(1), DOF: -1, Reason: "matrix is not positive definite"}
	}
	cond := chol.Cond()

	var l mat.TriDense
	chol.LTo(&l)
	for r := 0; r < m; r++ {
		pivot := l.At(r, r) * l.At(r, r)
		if pivot < pivotTolerance*kr.At(r, r) {
			return nil, &SingularSystemError{
				Size:   m,
				Cond:   cond,
				DOF:    keep[r],
				Reason: fmt.Sprintf("pivot ratio %.3g below %g", pivot/kr.At(r, r), pivotTolerance),
			}
		}
	}

	var ur mat.VecDense
	if err := chol.SolveVecTo(&ur, fr); err != nil {
		return nil, &SingularSystemError{Size: m, Cond: cond, DOF: -1, Reason: err.Error()}
	}

	u := make([]float64, m)
	for i := range u {
		v := ur.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &SingularSystemError{Size: m, Cond: cond, DOF: keep[i], Reason: "solution is not finite"}
		}
		u[i] = v
	}
	return u, nil
}

// expand scatters the reduced solution back to a full vector of length n.
// DOFs missing from retained stay exactly zero.
func expand(ur []float64, retained []int, n int) []float64 {
	u := make([]float64, n)
	for r, gi := range retained {
		u[gi] = ur[r]
	}
	return u
}

// RecoverForces multiplies the unconstrained global stiffness matrix by the
// full displacement vector. Free DOFs reproduce the applied load, fixed DOFs
// give the reaction and spring DOFs the force carried by the structure into
// the spring.
func RecoverForces(k *mat.SymDense, u []float64) []float64 {
	n := len(u)
	if n == 0 {
		return []float64{}
	}
	var f mat.VecDense
	f.MulVec(k, mat.NewVecDense(n, append([]float64(nil), u...)))

	out := make([]float64, n)
	for i := range out {
		out[i] = f.AtVec(i)
	}
	return out
}
