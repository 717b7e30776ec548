// Package server exposes the dependency graph builder over HTTP.
//
// A Server is bound to one repository. It serves:
//
//	GET /healthz                      liveness and version
//	GET /v1/graph?package=&max_depth= the dependency graph of one package
//	GET /v1/resolve/{name}            the archive filename of a short name
//
// Errors are JSON objects carrying the error code from [errors.Code]. Every
// response carries an X-Request-ID header.
//
// [errors.Code]: github.com/Dima09182/depviz/pkg/errors
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Dima09182/depviz/pkg/apk"
	"github.com/Dima09182/depviz/pkg/pipeline"
	"github.com/Dima09182/depviz/pkg/source"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultIndexTTL is how long an opened repository serves requests
	// before its index is fetched again.
	DefaultIndexTTL = 5 * time.Minute
)

// Config configures a [Server].
type Config struct {
	Addr        string        // Listen address (default DefaultAddr)
	Repo        string        // Repository location (required)
	Mode        string        // Repository mode (default auto)
	MaxDepth    int           // Depth used when a request omits max_depth (default pipeline.DefaultMaxDepth)
	Concurrency int           // Parallel fetches per level
	Budget      time.Duration // Per-request traversal budget; 0 means none
	MaxNodes    int           // Per-request node limit; 0 means none
	IndexTTL    time.Duration // Opened repository lifetime (default DefaultIndexTTL)
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = pipeline.DefaultMaxDepth
	}
	if c.IndexTTL <= 0 {
		c.IndexTTL = DefaultIndexTTL
	}
	return c
}

// Server represents the HTTP API server.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	logger  *log.Logger
	router  chi.Router
	server  *http.Server
	started time.Time

	mu       sync.Mutex
	src      source.Source
	openedAt time.Time
}

// New creates a server for cfg.Repo. The runner's cache is shared by all
// requests.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:     cfg,
		runner:  runner,
		logger:  logger,
		started: time.Now(),
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/resolve/{name}", s.handleResolve)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	s.router = r

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.cfg.Addr, "repo", s.cfg.Repo)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// openRepo returns the configured repository, opening it again once it is
// older than the configured TTL. Graph and resolve requests share it, so the
// index is fetched once per TTL rather than once per request.
func (s *Server) openRepo(ctx context.Context) (source.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.src != nil && time.Since(s.openedAt) < s.cfg.IndexTTL {
		return s.src, nil
	}
	src, err := s.runner.Open(ctx, s.cfg.Repo, s.cfg.Mode)
	if err != nil {
		return nil, err
	}
	// An empty index means it could not be fetched; retry next time.
	if live, ok := src.(*source.Live); ok && live.Index().Len() == 0 {
		return src, nil
	}
	s.src, s.openedAt = src, time.Now()
	return src, nil
}

// resolveIndex returns the index of the shared repository.
func (s *Server) resolveIndex(ctx context.Context) (*apk.Index, error) {
	src, err := s.openRepo(ctx)
	if err != nil {
		return nil, err
	}
	live, err := pipeline.AsLive(s.cfg.Repo, src)
	if err != nil {
		return nil, err
	}
	return live.Index(), nil
}
