// Package input reads the delimited text files describing a truss model.
//
// Every file holds one record per line, fields separated by commas. Lines
// starting with '#' are comments. The parsers only check that each line is
// well formed; cross references between entities are checked by the solver.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// ParseError reports a malformed, missing or non-numeric field.
type ParseError struct {
	File  string
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: field %s: %v", e.File, e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MemberRecord is a member line before its material has been resolved.
type MemberRecord struct {
	Name     string
	NodeA    string
	NodeB    string
	Material string
}

// line is one non-comment record together with its position in the file.
type line struct {
	file   string
	num    int
	fields []string
}

func (l line) errorf(field, format string, args ...any) error {
	return &ParseError{File: l.file, Line: l.num, Field: field, Err: fmt.Errorf(format, args...)}
}

func (l line) name(i int, field string) (string, error) {
	v := l.fields[i]
	if v == "" {
		return "", l.errorf(field, "must not be empty")
	}
	return v, nil
}

func (l line) float(i int, field string) (float64, error) {
	v, err := strconv.ParseFloat(l.fields[i], 64)
	if err != nil {
		return 0, l.errorf(field, "%q is not a number", l.fields[i])
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, l.errorf(field, "%q is not finite", l.fields[i])
	}
	return v, nil
}

// readLines splits r into records with between lo and hi fields.
func readLines(r io.Reader, file string, lo, hi int) ([]line, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var lines []line
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &ParseError{File: file, Line: perr.Line, Err: perr.Err}
			}
			return nil, &ParseError{File: file, Err: err}
		}
		num, _ := cr.FieldPos(0)
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if len(rec) < lo || len(rec) > hi {
			want := strconv.Itoa(lo)
			if hi != lo {
				want = fmt.Sprintf("%d to %d", lo, hi)
			}
			return nil, &ParseError{File: file, Line: num, Err: fmt.Errorf("expected %s fields, got %d", want, len(rec))}
		}
		lines = append(lines, line{file: file, num: num, fields: rec})
	}
}

// ParseNodes reads "name, x, y" records.
func ParseNodes(r io.Reader, file string) ([]model.Node, error) {
	lines, err := readLines(r, file, 3, 3)
	if err != nil {
		return nil, err
	}
	nodes := make([]model.Node, 0, len(lines))
	for _, l := range lines {
		var n model.Node
		if n.Name, err = l.name(0, "name"); err != nil {
			return nil, err
		}
		if n.X, err = l.float(1, "x"); err != nil {
			return nil, err
		}
		if n.Y, err = l.float(2, "y"); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ParseMembers reads "name, node_a, node_b, material" records.
func ParseMembers(r io.Reader, file string) ([]MemberRecord, error) {
	lines, err := readLines(r, file, 4, 4)
	if err != nil {
		return nil, err
	}
	members := make([]MemberRecord, 0, len(lines))
	for _, l := range lines {
		var m MemberRecord
		if m.Name, err = l.name(0, "name"); err != nil {
			return nil, err
		}
		if m.NodeA, err = l.name(1, "node_a"); err != nil {
			return nil, err
		}
		if m.NodeB, err = l.name(2, "node_b"); err != nil {
			return nil, err
		}
		if m.Material, err = l.name(3, "material"); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// ParseMaterials reads "name, young_modulus, area" records.
func ParseMaterials(r io.Reader, file string) ([]model.Material, error) {
	lines, err := readLines(r, file, 3, 3)
	if err != nil {
		return nil, err
	}
	materials := make([]model.Material, 0, len(lines))
	for _, l := range lines {
		var m model.Material
		if m.Name, err = l.name(0, "name"); err != nil {
			return nil, err
		}
		if m.YoungModulus, err = l.float(1, "young_modulus"); err != nil {
			return nil, err
		}
		if m.Area, err = l.float(2, "area"); err != nil {
			return nil, err
		}
		if m.YoungModulus <= 0 {
			return nil, l.errorf("young_modulus", "must be positive, got %g", m.YoungModulus)
		}
		if m.Area <= 0 {
			return nil, l.errorf("area", "must be positive, got %g", m.Area)
		}
		materials = append(materials, m)
	}
	return materials, nil
}

// ParseSupports reads "name, node, fixture[, spring_stiffness]" records.
// Fixture 0, 1 and 2 select X, Y and both directions. A stiffness of -1, or
// no stiffness field at all, means a fixed support; a positive one a spring.
func ParseSupports(r io.Reader, file string) ([]model.Support, error) {
	lines, err := readLines(r, file, 3, 4)
	if err != nil {
		return nil, err
	}
	supports := make([]model.Support, 0, len(lines))
	for _, l := range lines {
		var s model.Support
		if s.Name, err = l.name(0, "name"); err != nil {
			return nil, err
		}
		if s.Node, err = l.name(1, "node"); err != nil {
			return nil, err
		}
		switch l.fields[2] {
		case "0":
			s.Direction = model.DirX
		case "1":
			s.Direction = model.DirY
		case "2":
			s.Direction = model.DirBoth
		default:
			return nil, l.errorf("fixture", "%q is not one of 0, 1, 2", l.fields[2])
		}

		s.Mode = model.Fixed()
		if len(l.fields) == 4 {
			k, err := l.float(3, "spring_stiffness")
			if err != nil {
				return nil, err
			}
			switch {
			case k == -1:
			case k > 0:
				s.Mode = model.Spring(k)
			default:
				return nil, l.errorf("spring_stiffness", "must be -1 (fixed) or positive, got %g", k)
			}
		}
		supports = append(supports, s)
	}
	return supports, nil
}

// ParseLoads reads "name, node, force_x, force_y" records.
func ParseLoads(r io.Reader, file string) ([]model.Load, error) {
	lines, err := readLines(r, file, 4, 4)
	if err != nil {
		return nil, err
	}
	loads := make([]model.Load, 0, len(lines))
	for _, l := range lines {
		var p model.Load
		if p.Name, err = l.name(0, "name"); err != nil {
			return nil, err
		}
		if p.Node, err = l.name(1, "node"); err != nil {
			return nil, err
		}
		if p.ForceX, err = l.float(2, "force_x"); err != nil {
			return nil, err
		}
		if p.ForceY, err = l.float(3, "force_y"); err != nil {
			return nil, err
		}
		loads = append(loads, p)
	}
	return loads, nil
}
