package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotruss/internal/diagram"
)

var (
	plotFile   string
	plotWidth  float64
	plotHeight float64
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot the truss geometry without solving",
	Long: `Draw members, nodes, supports and loads of a model to an image.
Useful for checking the input before an analysis.

The format follows the file extension (.png, .svg, .pdf).

Examples:
  gotruss plot --nodes kp.txt --members conn.txt --supports bcs.txt --loads loads.txt
  gotruss plot -p bridge.hcl --file bridge.svg`,
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)
	addInputFlags(plotCmd)

	plotCmd.Flags().StringVarP(&plotFile, "file", "f", "", "Output image (default: the project's geometry plot)")
	plotCmd.Flags().Float64Var(&plotWidth, "width", 0, "Image width (points)")
	plotCmd.Flags().Float64Var(&plotHeight, "height", 0, "Image height (points)")
}

func runPlot(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	m, err := loadModel(p)
	if err != nil {
		return err
	}

	name := p.Output.Path(p.Output.GeometryPlot)
	if cmd.Flags().Changed("file") {
		name = plotFile
	}
	if name == "" {
		return fmt.Errorf("no output file: set --file or output.geometry_plot")
	}
	opts := diagram.Options{Width: p.Output.Width, Height: p.Output.Height, Decimals: p.Output.Decimals}
	if cmd.Flags().Changed("width") {
		opts.Width = plotWidth
	}
	if cmd.Flags().Changed("height") {
		opts.Height = plotHeight
	}

	if err := diagram.GeometryPlot(snapshot(m, nil), opts, name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Geometry plot written to %s\n", name)
	return nil
}
