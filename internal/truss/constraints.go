package truss

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// ConstraintKind is the state of a single DOF.
type ConstraintKind int

const (
	Free ConstraintKind = iota
	Fixed
	Spring
)

// Constraint describes how one DOF is supported.
type Constraint struct {
	Kind      ConstraintKind
	Stiffness float64 // spring stiffness, zero unless Kind == Spring
}

func (c Constraint) String() string {
	switch c.Kind {
	case Fixed:
		return "fixed"
	case Spring:
		return fmt.Sprintf("spring(%g)", c.Stiffness)
	}
	return "free"
}

// EncodeConstraints turns supports into a per-DOF constraint vector of length
// dofs.Size(). Supports are applied in order; when two target the same DOF the
// later one wins.
func EncodeConstraints(supports []model.Support, dofs DOFMap) ([]Constraint, error) {
	cons := make([]Constraint, dofs.Size())

	for _, s := range supports {
		base, ok := dofs.Base(s.Node)
		if !ok {
			return nil, &UnknownNodeError{Kind: "support", Entity: s.Name, Node: s.Node}
		}
		if s.Direction < model.DirX || s.Direction > model.DirBoth {
			return nil, &InvalidSupportError{Support: s.Name, msg: fmt.Sprintf("unknown direction %v", s.Direction)}
		}

		c := Constraint{Kind: Fixed}
		if s.Mode.Spring {
			k := s.Mode.Stiffness
			if !(k > 0) || math.IsInf(k, 1) {
				return nil, &InvalidSupportError{Support: s.Name, msg: fmt.Sprintf("spring stiffness must be positive, got %g", k)}
			}
			c = Constraint{Kind: Spring, Stiffness: k}
		}

		for axis := 0; axis < 2; axis++ {
			if s.Direction.Covers(axis) {
				cons[base+axis] = c
			}
		}
	}
	return cons, nil
}
