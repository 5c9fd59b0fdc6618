package truss

import "fmt"

// UnknownNodeError is returned when a member, support or load names a node that
// is not part of the model.
type UnknownNodeError struct {
	Kind   string // "member", "support" or "load"
	Entity string
	Node   string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s %q references unknown node %q", e.Kind, e.Entity, e.Node)
}

// DegenerateGeometryError is returned for a member whose endpoints coincide or
// whose length is not finite.
type DegenerateGeometryError struct {
	Member string
	Length float64
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("member %q has degenerate geometry (length %g)", e.Member, e.Length)
}

// SingularSystemError is returned when the reduced stiffness system cannot be
// solved uniquely: the structure is a mechanism or has a floating part.
type SingularSystemError struct {
	Size   int     // number of DOFs in the factorized system
	Cond   float64 // condition estimate, +Inf when factorization failed
	DOF    int     // global DOF where the failure showed up, -1 if unknown
	Label  string  // node.axis form of DOF, filled in by Solver
	Reason string
}

func (e *SingularSystemError) Error() string {
	where := ""
	if e.Label != "" {
		where = " at " + e.Label
	} else if e.DOF >= 0 {
		where = fmt.Sprintf(" at DOF %d", e.DOF)
	}
	return fmt.Sprintf("singular stiffness system%s (%d DOFs, cond %g): %s; structure is under-constrained", where, e.Size, e.Cond, e.Reason)
}

// InvalidSectionError is returned for a member with non-positive or non-finite
// Young's modulus or area.
type InvalidSectionError struct {
	Member       string
	YoungModulus float64
	Area         float64
}

func (e *InvalidSectionError) Error() string {
	return fmt.Sprintf("member %q has invalid section: E=%g, A=%g (both must be positive)", e.Member, e.YoungModulus, e.Area)
}

// InvalidSupportError is returned for a spring support without positive stiffness
// or a support with an unknown direction.
type InvalidSupportError struct {
	Support string
	msg     string
}

func (e *InvalidSupportError) Error() string {
	return fmt.Sprintf("support %q: %s", e.Support, e.msg)
}

// DuplicateNodeError is returned when two nodes share a name.
type DuplicateNodeError struct {
	Node string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("node %q is defined more than once", e.Node)
}
