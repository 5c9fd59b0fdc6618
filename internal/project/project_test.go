package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gotruss/internal/model"
)

func TestParse(t *testing.T) {
	src := `
title = "Footbridge"

inputs {
  nodes    = "${project_dir}/kp.txt"
  members  = "${project_dir}/conn.txt"
  supports = "bcs.txt"
}

material "steel" {
  young_modulus = 210000
  area          = 0.1
}

material "timber" {
  young_modulus = 11000
  area          = 0.04
}

output {
  dir      = "out"
  scale    = 50
  decimals = 3
}
`
	p, err := Parse([]byte(src), "gotruss.hcl", "/work")
	require.NoError(t, err)

	assert.Equal(t, "Footbridge", p.Title)
	assert.Equal(t, "/work/kp.txt", p.Inputs.Nodes)
	assert.Equal(t, "/work/conn.txt", p.Inputs.Members)
	assert.Equal(t, filepath.Join("/work", "bcs.txt"), p.Inputs.Supports)
	assert.Equal(t, filepath.Join("/work", "inputs", "pointloads.txt"), p.Inputs.Loads)
	assert.Empty(t, p.Inputs.Materials)

	assert.Equal(t, []model.Material{
		{Name: "steel", YoungModulus: 210000, Area: 0.1},
		{Name: "timber", YoungModulus: 11000, Area: 0.04},
	}, p.Materials)

	assert.Equal(t, 50.0, p.Output.Scale)
	assert.Equal(t, 3, p.Output.Decimals)
	assert.Equal(t, 800.0, p.Output.Width)
	assert.Equal(t, filepath.Join("/work", "out", "reaction_plot.png"), p.Output.Path(p.Output.ReactionPlot))
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	p, err := Parse([]byte(""), "gotruss.hcl", ".")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestRelativePathsFollowProjectDir(t *testing.T) {
	src := `
inputs {
  nodes     = "kp.txt"
  members   = "../shared/conn.txt"
  supports  = "/abs/bcs.txt"
}
output {
  dir           = "results"
  geometry_plot = "/tmp/geometry.svg"
}
`
	p, err := Parse([]byte(src), "bridge.hcl", filepath.Join("/work", "sub"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/work", "sub", "kp.txt"), p.Inputs.Nodes)
	assert.Equal(t, filepath.Join("/work", "shared", "conn.txt"), p.Inputs.Members)
	assert.Equal(t, "/abs/bcs.txt", p.Inputs.Supports)
	assert.Empty(t, p.Inputs.Materials)
	assert.Equal(t, filepath.Join("/work", "sub", "results"), p.Output.Dir)
	assert.Equal(t, "/tmp/geometry.svg", p.Output.Path(p.Output.GeometryPlot))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `title = `},
		{"unknown attribute", `colour = "red"`},
		{"unknown variable", `title = "${nowhere}"`},
		{"bad material", "material \"x\" {\n young_modulus = 0\n area = 1\n}\n"},
		{"negative decimals", "output {\n decimals = -1\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl", ".")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bad.hcl")
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(`inputs {
  loads = "${project_dir}/loads.txt"
}
`), 0o600))

	p, err := Load(path)
	require.NoError(t, err)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, "loads.txt"), p.Inputs.Loads)
	assert.Equal(t, filepath.Join(abs, "inputs", "keypoints.txt"), p.Inputs.Nodes)
	assert.Equal(t, filepath.Join(abs, "outputs"), p.Output.Dir)

	_, err = Load(filepath.Join(dir, "missing.hcl"))
	require.Error(t, err)
}
