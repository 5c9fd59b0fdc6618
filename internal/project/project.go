// Package project loads the HCL project file that ties a truss model's input
// files, materials and output settings together.
package project

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/alexiusacademia/gotruss/internal/input"
	"github.com/alexiusacademia/gotruss/internal/model"
)

// DefaultFile is the project file name looked up when none is given.
const DefaultFile = "gotruss.hcl"

// Project is the decoded project file with defaults applied.
type Project struct {
	Title     string
	Inputs    input.Files
	Materials []model.Material
	Output    Output
}

// Output controls plots and exports.
type Output struct {
	Dir          string
	GeometryPlot string
	ReactionPlot string
	ResultsJSON  string
	Scale        float64
	Decimals     int
	Width        float64 // points
	Height       float64 // points
}

// Path joins name onto the output directory. An empty name stays empty.
func (o Output) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.Dir, name)
}

// Default returns the settings used when no project file is present: inputs
// read from inputs/, results written to outputs/.
func Default() *Project {
	return &Project{
		Title: "Truss",
		Inputs: input.Files{
			Nodes:    filepath.Join("inputs", "keypoints.txt"),
			Members:  filepath.Join("inputs", "connections.txt"),
			Supports: filepath.Join("inputs", "bcs.txt"),
			Loads:    filepath.Join("inputs", "pointloads.txt"),
		},
		Output: Output{
			Dir:          "outputs",
			GeometryPlot: "geometry_plot.png",
			ReactionPlot: "reaction_plot.png",
			ResultsJSON:  "keypoint_result_data.json",
			Scale:        1.0,
			Decimals:     2,
			Width:        800,
			Height:       300,
		},
	}
}

type hclFile struct {
	Title     *string       `hcl:"title,optional"`
	Inputs    *hclInputs    `hcl:"inputs,block"`
	Materials []hclMaterial `hcl:"material,block"`
	Output    *hclOutput    `hcl:"output,block"`
}

type hclInputs struct {
	Nodes     *string `hcl:"nodes,optional"`
	Members   *string `hcl:"members,optional"`
	Supports  *string `hcl:"supports,optional"`
	Loads     *string `hcl:"loads,optional"`
	Materials *string `hcl:"materials,optional"`
}

type hclMaterial struct {
	Name         string  `hcl:"name,label"`
	YoungModulus float64 `hcl:"young_modulus"`
	Area         float64 `hcl:"area"`
}

type hclOutput struct {
	Dir          *string  `hcl:"dir,optional"`
	GeometryPlot *string  `hcl:"geometry_plot,optional"`
	ReactionPlot *string  `hcl:"reaction_plot,optional"`
	ResultsJSON  *string  `hcl:"results_json,optional"`
	Scale        *float64 `hcl:"scale,optional"`
	Decimals     *int     `hcl:"decimals,optional"`
	Width        *float64 `hcl:"width,optional"`
	Height       *float64 `hcl:"height,optional"`
}

// EvalContext exposes project_dir, the absolute directory of the project file.
func EvalContext(dir string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"project_dir": cty.StringVal(dir),
		},
	}
}

// Load parses and decodes the project file at path.
func Load(path string) (*Project, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, diags)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return decode(file.Body, path, dir)
}

// Parse decodes project source held in memory. dir stands in for the project
// file's directory; relative input paths and the output directory are resolved
// against it.
func Parse(src []byte, filename, dir string) (*Project, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", filename, diags)
	}
	return decode(file.Body, filename, dir)
}

func decode(body hcl.Body, filename, dir string) (*Project, error) {
	var raw hclFile
	if diags := gohcl.DecodeBody(body, EvalContext(dir), &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", filename, diags)
	}

	p := Default()
	set(&p.Title, raw.Title)
	if in := raw.Inputs; in != nil {
		set(&p.Inputs.Nodes, in.Nodes)
		set(&p.Inputs.Members, in.Members)
		set(&p.Inputs.Supports, in.Supports)
		set(&p.Inputs.Loads, in.Loads)
		set(&p.Inputs.Materials, in.Materials)
	}
	for _, m := range raw.Materials {
		if m.YoungModulus <= 0 || m.Area <= 0 {
			return nil, fmt.Errorf("%s: material %q: young_modulus and area must be positive", filename, m.Name)
		}
		p.Materials = append(p.Materials, model.Material{Name: m.Name, YoungModulus: m.YoungModulus, Area: m.Area})
	}
	if out := raw.Output; out != nil {
		set(&p.Output.Dir, out.Dir)
		set(&p.Output.GeometryPlot, out.GeometryPlot)
		set(&p.Output.ReactionPlot, out.ReactionPlot)
		set(&p.Output.ResultsJSON, out.ResultsJSON)
		set(&p.Output.Scale, out.Scale)
		set(&p.Output.Decimals, out.Decimals)
		set(&p.Output.Width, out.Width)
		set(&p.Output.Height, out.Height)
	}
	for _, path := range []*string{
		&p.Inputs.Nodes, &p.Inputs.Members, &p.Inputs.Supports,
		&p.Inputs.Loads, &p.Inputs.Materials, &p.Output.Dir,
	} {
		*path = relativeTo(dir, *path)
	}
	if p.Output.Decimals < 0 {
		return nil, fmt.Errorf("%s: output decimals must not be negative", filename)
	}
	if p.Output.Width <= 0 || p.Output.Height <= 0 {
		return nil, fmt.Errorf("%s: output width and height must be positive", filename)
	}
	return p, nil
}

// relativeTo resolves a relative path against the project file's directory.
func relativeTo(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
