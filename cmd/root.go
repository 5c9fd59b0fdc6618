package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotruss/internal/version"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "gotruss",
	Short: "2D Truss Static Analysis Tool",
	Long: `gotruss - Go 2D Truss Analyzer

A CLI tool for the linear static analysis of plane pin-jointed trusses
using the direct stiffness method.

This tool helps structural engineers:
  - Solve nodal displacements and support reactions
  - Model fixed and elastic (spring) supports
  - Recover member axial forces and stresses
  - Plot the geometry and the displaced shape
  - Serve analyses over HTTP

Models are read from plain comma separated text files, optionally tied
together by a gotruss.hcl project file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(logLevel, logFormat, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   gotruss v%-47s║\n", version.Version)
		fmt.Println("  ║   Go 2D Truss Analyzer                                    ║")
		fmt.Println("  ║   Direct stiffness method, pin-jointed plane trusses      ║")
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Nodal displacements and support reactions")
		fmt.Println("    • Fixed and spring supports per direction")
		fmt.Println("    • Member axial forces and stresses")
		fmt.Println("    • Geometry and reaction plots (PNG, SVG, PDF)")
		fmt.Println("    • HTTP upload API")
		fmt.Println()
		fmt.Println("  Use 'gotruss --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}
