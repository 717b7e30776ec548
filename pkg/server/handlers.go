package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dima09182/depviz/pkg/apk"
	"github.com/Dima09182/depviz/pkg/buildinfo"
	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/pipeline"
	"github.com/Dima09182/depviz/pkg/render"
	"github.com/Dima09182/depviz/pkg/source"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Repo    string `json:"repo"`
	Uptime  string `json:"uptime"`
}

// ResolveResponse is the body of GET /v1/resolve/{name}.
type ResolveResponse struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
		Repo:    s.cfg.Repo,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

// handleGraph builds the graph of ?package= and writes it in ?format=
// (default json). Per-package problems are part of the body, not errors.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	depth := s.cfg.MaxDepth
	if raw := q.Get("max_depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, deperrors.New(deperrors.ErrCodeInvalidDepth, "max_depth must be an integer, got %q", raw))
			return
		}
		depth = n
	}
	format := q.Get("format")
	if format == "" {
		format = string(render.FormatJSON)
	}

	req := pipeline.Request{
		Package:     q.Get("package"),
		Repo:        s.cfg.Repo,
		Mode:        s.cfg.Mode,
		MaxDepth:    depth,
		Concurrency: s.cfg.Concurrency,
		Budget:      s.cfg.Budget,
		MaxNodes:    s.cfg.MaxNodes,
		Format:      format,
		Plain:       true,
		Detailed:    q.Get("detailed") == "true",
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	src, err := s.openRepo(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.runner.ExecuteOn(r.Context(), src, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType(res.Format))
	w.Header().Set("X-Graph-Hash", res.GraphHash)
	w.Header().Set("X-Run-ID", res.Graph.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := deperrors.ValidatePackageName(name); err != nil {
		writeError(w, r, err)
		return
	}

	idx, err := s.resolveIndex(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if apk.IsQualified(name) {
		base, ok := idx.Base(name)
		if !ok {
			base = apk.CanonicalName(name)
		}
		writeJSON(w, http.StatusOK, ResolveResponse{Name: base, Filename: name})
		return
	}
	file, ok := idx.Resolve(name)
	if !ok {
		writeError(w, r, &source.UnknownPackageError{Name: name})
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Name: name, Filename: file})
}

func contentType(f render.Format) string {
	switch f {
	case render.FormatJSON:
		return "application/json"
	case render.FormatYAML:
		return "application/yaml"
	case render.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case render.FormatSVG:
		return "image/svg+xml"
	}
	return "text/plain; charset=utf-8"
}
