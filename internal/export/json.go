// Package export writes analysis results as JSON.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// Report is the full result document: nodal results plus member axial forces.
type Report struct {
	Title   string               `json:"title,omitempty"`
	Nodes   []model.Result       `json:"nodes"`
	Members []model.MemberResult `json:"members,omitempty"`
}

// WriteJSON writes the node results as an indented JSON array, one object per
// node with name, x, y, fx, fy, ux and uy.
func WriteJSON(w io.Writer, results []model.Result) error {
	if results == nil {
		results = []model.Result{}
	}
	return encode(w, results)
}

// WriteReport writes r as an indented JSON object.
func WriteReport(w io.Writer, r Report) error {
	if r.Nodes == nil {
		r.Nodes = []model.Result{}
	}
	return encode(w, r)
}

// WriteFile writes the node results to path, creating parent directories.
func WriteFile(path string, results []model.Result) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, results) })
}

// WriteReportFile writes r to path, creating parent directories.
func WriteReportFile(path string, r Report) error {
	return writeFile(path, func(w io.Writer) error { return WriteReport(w, r) })
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
