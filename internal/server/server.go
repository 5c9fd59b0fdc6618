// Package server exposes the truss solver over HTTP. A client uploads the
// input files of one model as a multipart form and gets the node results back
// as JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/alexiusacademia/gotruss/internal/export"
	"github.com/alexiusacademia/gotruss/internal/input"
	"github.com/alexiusacademia/gotruss/internal/model"
	"github.com/alexiusacademia/gotruss/internal/truss"
)

// Form field names of the uploaded input files.
const (
	FieldNodes     = "keypoint"
	FieldMembers   = "connection"
	FieldSupports  = "boundary_condition"
	FieldLoads     = "pointload"
	FieldMaterials = "material"
)

// Request size limits. MaxUpload is the in-memory part of a multipart form,
// MaxBody the whole request body.
const (
	DefaultMaxUpload = 8 << 20
	DefaultMaxBody   = 32 << 20
)

// Server handles analysis requests. Materials are merged on top of any
// uploaded material file.
type Server struct {
	Logger    *slog.Logger
	Materials []model.Material
	MaxUpload int64
	MaxBody   int64
}

// New creates a server logging through logger.
func New(logger *slog.Logger, materials []model.Material) *Server {
	return &Server{Logger: logger, Materials: materials, MaxUpload: DefaultMaxUpload, MaxBody: DefaultMaxBody}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// Handler returns the routes:
//
//	POST /run      analyse the uploaded model
//	GET  /healthz  liveness probe
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("POST /run/{$}", s.handleRun)
	mux.HandleFunc("GET /healthz", handleHealth)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger().Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	log := s.logger().With("remote", r.RemoteAddr)
	start := time.Now()

	maxUpload, maxBody := s.MaxUpload, s.MaxBody
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		log.Warn("bad multipart form", "error", err)
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	src, err := sources(r)
	if err != nil {
		log.Warn("missing input file", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m, err := input.Read(src, s.Materials...)
	if err != nil {
		log.Warn("input rejected", "error", err)
		status := http.StatusBadRequest
		var materialErr *input.UnknownMaterialError
		if errors.As(err, &materialErr) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}

	a, err := truss.NewSolver(log).Solve(m)
	if err != nil {
		log.Warn("analysis failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	log.Info("analysis complete", "nodes", len(m.Nodes), "members", len(m.Members), "elapsed", time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("members") == "true" {
		err = export.WriteReport(w, export.Report{Nodes: a.Nodes, Members: a.Members})
	} else {
		err = export.WriteJSON(w, a.Nodes)
	}
	if err != nil {
		log.Error("failed to write response", "error", err)
	}
}

// sources collects the uploaded files. Only the material file is optional.
func sources(r *http.Request) (input.Sources, error) {
	var src input.Sources
	fields := []struct {
		name     string
		dst      *input.Source
		optional bool
	}{
		{FieldNodes, &src.Nodes, false},
		{FieldMembers, &src.Members, false},
		{FieldSupports, &src.Supports, false},
		{FieldLoads, &src.Loads, false},
		{FieldMaterials, &src.Materials, true},
	}
	for _, f := range fields {
		file, hdr, err := r.FormFile(f.name)
		if errors.Is(err, http.ErrMissingFile) && f.optional {
			continue
		}
		if err != nil {
			return input.Sources{}, fmt.Errorf("form file %q: %w", f.name, err)
		}
		*f.dst = input.Source{Name: name(f.name, hdr), R: file}
	}
	return src, nil
}

func name(field string, hdr *multipart.FileHeader) string {
	if hdr != nil && hdr.Filename != "" {
		return hdr.Filename
	}
	return field
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: err.Error(), Kind: kind(err)})
}

// kind names the error category for clients.
func kind(err error) string {
	var (
		parseErr    *input.ParseError
		materialErr *input.UnknownMaterialError
		nodeErr     *truss.UnknownNodeError
		geomErr     *truss.DegenerateGeometryError
		singularErr *truss.SingularSystemError
		sectionErr  *truss.InvalidSectionError
		supportErr  *truss.InvalidSupportError
		dupErr      *truss.DuplicateNodeError
	)
	switch {
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &materialErr):
		return "unknown_material"
	case errors.As(err, &nodeErr):
		return "unknown_node"
	case errors.As(err, &geomErr):
		return "degenerate_geometry"
	case errors.As(err, &singularErr):
		return "singular_system"
	case errors.As(err, &sectionErr):
		return "invalid_section"
	case errors.As(err, &supportErr):
		return "invalid_support"
	case errors.As(err, &dupErr):
		return "duplicate_node"
	}
	return ""
}
