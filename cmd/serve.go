package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotruss/internal/input"
	"github.com/alexiusacademia/gotruss/internal/model"
	"github.com/alexiusacademia/gotruss/internal/server"
)

var (
	serveAddr      string
	serveMaterials string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve truss analyses over HTTP",
	Long: `Start an HTTP server that analyses uploaded models.

Endpoints:
  POST /run      multipart form with the files keypoint, connection,
                 boundary_condition, pointload and optionally material.
                 Responds with the node results as JSON. Add ?members=true
                 to include member axial forces.
  GET  /healthz  liveness probe

Example:
  gotruss serve --addr :8080
  curl -F keypoint=@kp.txt -F connection=@conn.txt \
       -F boundary_condition=@bcs.txt -F pointload=@loads.txt \
       http://localhost:8080/run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveMaterials, "materials", "", "Material file applied to every request")
}

func runServe(cmd *cobra.Command, args []string) error {
	var materials []model.Material
	if serveMaterials != "" {
		f, err := os.Open(serveMaterials)
		if err != nil {
			return err
		}
		materials, err = input.ParseMaterials(f, serveMaterials)
		f.Close()
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting gotruss server at http://localhost%s\n", serveAddr)
	return server.New(slog.Default(), materials).ListenAndServe(ctx, serveAddr)
}
