package model

import "fmt"

// Node is a pin joint of the truss. Its geometry never changes during an analysis.
type Node struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Material holds the section and elastic properties a member is built from.
type Material struct {
	Name         string  `json:"name"`
	YoungModulus float64 `json:"young_modulus"` // E
	Area         float64 `json:"area"`          // A
}

// DefaultMaterial is used when a model defines no materials at all.
var DefaultMaterial = Material{
	Name:         "default",
	YoungModulus: 210000.0,
	Area:         0.1,
}

// Member is a two-node bar carrying axial force only.
type Member struct {
	Name         string  `json:"name"`
	NodeA        string  `json:"node_a"`
	NodeB        string  `json:"node_b"`
	Material     string  `json:"material,omitempty"`
	YoungModulus float64 `json:"young_modulus"`
	Area         float64 `json:"area"`
}

// Direction selects which degrees of freedom of a node a support acts on.
type Direction int

const (
	DirX Direction = iota
	DirY
	DirBoth
)

func (d Direction) String() string {
	switch d {
	case DirX:
		return "X"
	case DirY:
		return "Y"
	case DirBoth:
		return "Both"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Covers reports whether the direction acts on the x (axis 0) or y (axis 1) DOF.
func (d Direction) Covers(axis int) bool {
	switch d {
	case DirX:
		return axis == 0
	case DirY:
		return axis == 1
	case DirBoth:
		return axis == 0 || axis == 1
	}
	return false
}

// SupportMode is either a rigid constraint or an elastic spring.
type SupportMode struct {
	Spring    bool
	Stiffness float64 // only meaningful when Spring is true
}

// Fixed returns the rigid support mode.
func Fixed() SupportMode { return SupportMode{} }

// Spring returns an elastic support mode with stiffness k.
func Spring(k float64) SupportMode { return SupportMode{Spring: true, Stiffness: k} }

func (m SupportMode) String() string {
	if m.Spring {
		return fmt.Sprintf("Spring(%g)", m.Stiffness)
	}
	return "Fixed"
}

// Support is a boundary condition applied to one node.
type Support struct {
	Name      string      `json:"name"`
	Node      string      `json:"node"`
	Direction Direction   `json:"direction"`
	Mode      SupportMode `json:"mode"`
}

// Load is a point force applied at a node. Several loads on one node superpose.
type Load struct {
	Name   string  `json:"name"`
	Node   string  `json:"node"`
	ForceX float64 `json:"force_x"`
	ForceY float64 `json:"force_y"`
}

// Model is the complete, already validated input of one analysis run.
type Model struct {
	Title    string
	Nodes    []Node
	Members  []Member
	Supports []Support
	Loads    []Load
}

// Result is the per-node output of an analysis: recovered force and displacement.
type Result struct {
	Node string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Fx   float64 `json:"fx"`
	Fy   float64 `json:"fy"`
	Ux   float64 `json:"ux"`
	Uy   float64 `json:"uy"`
}

// MemberResult holds the axial response of one member.
type MemberResult struct {
	Member string  `json:"name"`
	Length float64 `json:"length"`
	Axial  float64 `json:"axial_force"` // tension positive
	Stress float64 `json:"axial_stress"`
}
