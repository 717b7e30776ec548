// Package pipeline provides the build → render pipeline shared by the CLI and
// the HTTP server.
//
// A [Runner] validates a [Request], opens the package source for the
// requested repository, traverses the dependency graph and renders it in the
// requested format. Centralising this keeps argument validation, logging and
// caching identical across entry points.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Request{
//	    Package:  "busybox",
//	    Repo:     "https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64",
//	    MaxDepth: pipeline.DefaultMaxDepth,
//	    Format:   "json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(res.Artifact)
//
// Run the stages on their own:
//
//	g, err := runner.BuildGraph(ctx, req)
//	data, hit, err := runner.Render(ctx, g, render.FormatSVG, render.Options{})
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/graph"
	"github.com/Dima09182/depviz/pkg/render"
	"github.com/Dima09182/depviz/pkg/source"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxDepth is the depth bound used when the caller gives none.
	DefaultMaxDepth = graph.DefaultMaxDepth

	// DefaultConcurrency is the number of archives fetched in parallel per level.
	DefaultConcurrency = graph.DefaultConcurrency

	// DefaultFormat is the output format used when the caller gives none.
	DefaultFormat = render.FormatText
)

// ArtifactTTL bounds how long a rendered artifact stays in the runner cache.
const ArtifactTTL = 10 * time.Minute

// =============================================================================
// Request - Pipeline Arguments
// =============================================================================

// Request holds the arguments of one pipeline run. It supports JSON
// serialization for server requests.
//
// MaxDepth is used as given: 0 records only the root. Callers that want the
// default bound set it to DefaultMaxDepth.
type Request struct {
	Package     string        `json:"package"`
	Repo        string        `json:"repo"`
	Mode        string        `json:"mode,omitempty"`
	MaxDepth    int           `json:"max_depth"`
	Concurrency int           `json:"concurrency,omitempty"`
	Budget      time.Duration `json:"budget,omitempty"`
	MaxNodes    int           `json:"max_nodes,omitempty"`

	Format   string `json:"format,omitempty"`
	Plain    bool   `json:"plain,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`

	// Logger overrides the runner's logger for this request (not serialized).
	Logger *log.Logger `json:"-"`

	mode      source.Mode
	format    render.Format
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the traversed dependency graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the graph (see [GraphHash]).
	GraphHash string

	// Format is the format Artifact is rendered in.
	Format render.Format

	// Artifact is the rendered graph.
	Artifact []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	Diagnostics int
	OpenTime    time.Duration
	BuildTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether the artifact came from cache
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks every argument and applies defaults. All problems it
// reports are argument errors, fatal before any repository access.
// It is idempotent.
func (r *Request) Validate() error {
	if r.validated {
		return nil
	}
	r.Package = strings.TrimSpace(r.Package)
	if err := deperrors.ValidatePackageName(r.Package); err != nil {
		return err
	}
	if err := deperrors.ValidateLocation(r.Repo); err != nil {
		return err
	}
	if err := deperrors.ValidateMaxDepth(r.MaxDepth); err != nil {
		return err
	}
	if r.Concurrency < 0 {
		return deperrors.New(deperrors.ErrCodeInvalidInput, "concurrency cannot be negative (got %d)", r.Concurrency)
	}
	if r.Budget < 0 {
		return deperrors.New(deperrors.ErrCodeInvalidInput, "budget cannot be negative (got %s)", r.Budget)
	}
	if r.MaxNodes < 0 {
		return deperrors.New(deperrors.ErrCodeInvalidInput, "max nodes cannot be negative (got %d)", r.MaxNodes)
	}

	mode, err := source.ParseMode(r.Mode)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(r.Format)
	if err != nil {
		return err
	}
	r.mode, r.format = mode, format
	r.Mode, r.Format = string(mode), string(format)
	r.validated = true
	return nil
}

// RenderOptions returns the render settings of the request.
func (r *Request) RenderOptions() render.Options {
	return render.Options{Plain: r.Plain, Detailed: r.Detailed}
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
