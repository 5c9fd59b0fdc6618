package truss

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// Bar holds the geometry of one member: its length and direction cosines.
type Bar struct {
	Length float64
	C      float64 // cos(theta) = dx/L
	S      float64 // sin(theta) = dy/L
}

// NewBar measures the member running from a to b.
func NewBar(member string, a, b model.Node) (Bar, error) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	l := math.Hypot(dx, dy)
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Bar{}, &DegenerateGeometryError{Member: member, Length: l}
	}
	return Bar{Length: l, C: dx / l, S: dy / l}, nil
}

func checkSection(m model.Member) error {
	valid := func(v float64) bool { return v > 0 && !math.IsInf(v, 1) }
	if !valid(m.YoungModulus) || !valid(m.Area) {
		return &InvalidSectionError{Member: m.Name, YoungModulus: m.YoungModulus, Area: m.Area}
	}
	return nil
}

// LocalStiffness returns the 4x4 stiffness of member m in global coordinates,
// ordered (a.x, a.y, b.x, b.y):
//
//	         | c²   cs  -c²  -cs |
//	k = EA/L | cs   s²  -cs  -s² |
//	         |-c²  -cs   c²   cs |
//	         |-cs  -s²   cs   s² |
func LocalStiffness(m model.Member, a, b model.Node) (*mat.SymDense, error) {
	if err := checkSection(m); err != nil {
		return nil, err
	}
	bar, err := NewBar(m.Name, a, b)
	if err != nil {
		return nil, err
	}

	ea := m.YoungModulus * m.Area / bar.Length
	cc := ea * bar.C * bar.C
	cs := ea * bar.C * bar.S
	ss := ea * bar.S * bar.S

	return mat.NewSymDense(4, []float64{
		cc, cs, -cc, -cs,
		cs, ss, -cs, -ss,
		-cc, -cs, cc, cs,
		-cs, -ss, cs, ss,
	}), nil
}
