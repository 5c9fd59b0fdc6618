// Package truss implements the direct stiffness method for 2D pin-jointed
// trusses: element stiffness, global assembly, support handling, reduced
// solve and force recovery.
package truss

import (
	"errors"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// Analysis is the output snapshot of one run.
type Analysis struct {
	DOFs         DOFMap
	Stiffness    *mat.SymDense // unconstrained global matrix, nil for an empty model
	Constraints  []Constraint
	Loads        []float64
	Displacement []float64
	Forces       []float64
	Nodes        []model.Result
	Members      []model.MemberResult
}

// Reaction returns the recovered force at the named node.
func (a *Analysis) Reaction(node string) (fx, fy float64, ok bool) {
	b, ok := a.DOFs.Base(node)
	if !ok {
		return 0, 0, false
	}
	return a.Forces[b], a.Forces[b+1], true
}

// Solver runs the analysis pipeline. The zero value is usable and logs nothing.
type Solver struct {
	Logger *slog.Logger
}

// NewSolver creates a solver logging through logger.
func NewSolver(logger *slog.Logger) *Solver {
	return &Solver{Logger: logger}
}

func (s *Solver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// Solve runs the whole pipeline on m. The model is not modified; every run
// builds its own matrices. The first failing stage aborts the run.
func (s *Solver) Solve(m *model.Model) (*Analysis, error) {
	log := s.logger()

	seen := make(map[string]struct{}, len(m.Nodes))
	for _, n := range m.Nodes {
		if _, dup := seen[n.Name]; dup {
			return nil, &DuplicateNodeError{Node: n.Name}
		}
		seen[n.Name] = struct{}{}
	}

	dofs := NewDOFMap(m.Nodes)
	log.Debug("dof map built", "nodes", len(m.Nodes), "dofs", dofs.Size())

	k, err := Assemble(m.Nodes, m.Members, dofs)
	if err != nil {
		return nil, err
	}
	log.Debug("global stiffness assembled", "members", len(m.Members))

	cons, err := EncodeConstraints(m.Supports, dofs)
	if err != nil {
		return nil, err
	}
	f, err := LoadVector(m.Loads, dofs)
	if err != nil {
		return nil, err
	}
	log.Debug("boundary conditions encoded", "supports", len(m.Supports), "loads", len(m.Loads), "free", len(retainedDOFs(cons)))

	u, err := Solve(k, f, cons)
	if err != nil {
		var serr *SingularSystemError
		if errors.As(err, &serr) && serr.DOF >= 0 {
			serr.Label = dofs.Label(serr.DOF)
		}
		return nil, err
	}

	forces := []float64{}
	if k != nil {
		forces = RecoverForces(k, u)
	}
	log.Debug("forces recovered", "dofs", len(forces))

	return &Analysis{
		DOFs:         dofs,
		Stiffness:    k,
		Constraints:  cons,
		Loads:        f,
		Displacement: u,
		Forces:       forces,
		Nodes:        MergeResults(dofs, m.Nodes, u, forces),
		Members:      MemberForces(m.Nodes, m.Members, dofs, u),
	}, nil
}
