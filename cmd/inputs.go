package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotruss/internal/input"
	"github.com/alexiusacademia/gotruss/internal/model"
	"github.com/alexiusacademia/gotruss/internal/project"
)

// Input flags shared by the commands that read a model.
var (
	projectFile   string
	nodesFile     string
	membersFile   string
	supportsFile  string
	loadsFile     string
	materialsFile string
	outputDir     string
)

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&projectFile, "project", "p", "", "Project file (default ./"+project.DefaultFile+" if present)")
	cmd.Flags().StringVar(&nodesFile, "nodes", "", "Node file: name, x, y")
	cmd.Flags().StringVar(&membersFile, "members", "", "Member file: name, node_a, node_b, material")
	cmd.Flags().StringVar(&supportsFile, "supports", "", "Support file: name, node, fixture, spring_stiffness")
	cmd.Flags().StringVar(&loadsFile, "loads", "", "Load file: name, node, force_x, force_y")
	cmd.Flags().StringVar(&materialsFile, "materials", "", "Material file: name, young_modulus, area")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory")
}

// loadProject reads the project file if there is one and applies the input
// flags on top of it.
func loadProject(cmd *cobra.Command) (*project.Project, error) {
	p := project.Default()
	path := projectFile
	if path == "" {
		if _, err := os.Stat(project.DefaultFile); err == nil {
			path = project.DefaultFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if path != "" {
		var err error
		if p, err = project.Load(path); err != nil {
			return nil, err
		}
		slog.Debug("project loaded", "path", path)
	}

	override := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	override("nodes", &p.Inputs.Nodes, nodesFile)
	override("members", &p.Inputs.Members, membersFile)
	override("supports", &p.Inputs.Supports, supportsFile)
	override("loads", &p.Inputs.Loads, loadsFile)
	override("materials", &p.Inputs.Materials, materialsFile)
	override("output", &p.Output.Dir, outputDir)
	return p, nil
}

// loadModel reads the model named by the project. Inline project materials
// override the materials file.
func loadModel(p *project.Project) (*model.Model, error) {
	m, err := input.Load(p.Inputs, p.Materials...)
	if err != nil {
		return nil, err
	}
	m.Title = p.Title
	slog.Debug("model loaded",
		"nodes", len(m.Nodes), "members", len(m.Members),
		"supports", len(m.Supports), "loads", len(m.Loads))
	return m, nil
}
