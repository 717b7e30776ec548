package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Dima09182/depviz/pkg/apk"
	"github.com/Dima09182/depviz/pkg/cache"
	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/fetch"
	"github.com/Dima09182/depviz/pkg/graph"
	"github.com/Dima09182/depviz/pkg/render"
	"github.com/Dima09182/depviz/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it to avoid duplicating this logic.
//
// The Runner is stateless except for the cache and logger: it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different requests.
type Runner struct {
	Cache  cache.Cache
	HTTP   fetch.HTTPOptions
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Logger: logger,
	}
}

// Execute runs the complete build → render pipeline.
func (r *Runner) Execute(ctx context.Context, req Request) (*Result, error) {
	return r.ExecuteOn(ctx, nil, req)
}

// ExecuteOn is Execute over an already opened source. A long-lived caller
// opens req.Repo once and reuses it; a nil src opens req.Repo.
func (r *Runner) ExecuteOn(ctx context.Context, src source.Source, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := r.logger(req)

	g, stats, err := r.build(ctx, src, req)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Graph:     g,
		GraphHash: GraphHash(g),
		Format:    req.format,
		Stats:     stats,
	}

	renderStart := time.Now()
	data, hit, err := r.render(ctx, g, result.GraphHash, req.format, req.RenderOptions())
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifact = data
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	logger.Debug("rendered output",
		"format", req.format,
		"bytes", len(data),
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildGraph validates req, opens its repository and traverses the
// dependencies of req.Package. Argument errors and cancellation are the only
// failures; per-package problems are logged and kept in the graph's
// diagnostics.
func (r *Runner) BuildGraph(ctx context.Context, req Request) (*graph.Graph, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	g, _, err := r.build(ctx, nil, req)
	return g, err
}

func (r *Runner) build(ctx context.Context, src source.Source, req Request) (*graph.Graph, Stats, error) {
	var stats Stats
	logger := r.logger(req)

	if src == nil {
		openStart := time.Now()
		var err error
		if src, err = r.open(ctx, req.Repo, req.mode); err != nil {
			return nil, stats, err
		}
		stats.OpenTime = time.Since(openStart)
		logger.Debug("opened repository", "source", source.Describe(src), "duration", stats.OpenTime)
	}

	buildStart := time.Now()
	g, err := graph.Build(ctx, graph.RunContext{
		Source:      src,
		MaxDepth:    req.MaxDepth,
		Concurrency: req.Concurrency,
		Budget:      req.Budget,
		MaxNodes:    req.MaxNodes,
		Logger:      logger.Debugf,
	}, req.Package)
	if err != nil {
		return nil, stats, err
	}
	stats.BuildTime = time.Since(buildStart)
	stats.NodeCount = g.Len()
	stats.EdgeCount = len(g.Edges())
	stats.Diagnostics = len(g.Diagnostics())

	for _, d := range g.Diagnostics() {
		logger.Warn(diagnosticMessage(d.Kind), "package", d.Package, "err", d.Err)
	}

	logger.Info("built dependency graph",
		"root", g.Root,
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
		"depth", g.MaxRecordedDepth(),
		"duration", stats.BuildTime)

	return g, stats, nil
}

// Render renders g in format f. SVG, DOT and text output is cached by graph
// content, so rendering the same graph twice hits the cache.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, f render.Format, opts render.Options) ([]byte, bool, error) {
	return r.render(ctx, g, GraphHash(g), f, opts)
}

func (r *Runner) render(ctx context.Context, g *graph.Graph, hash string, f render.Format, opts render.Options) ([]byte, bool, error) {
	key := artifactKey(hash, f, opts)
	if cacheable(f) {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			return data, true, nil
		}
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, g, f, opts); err != nil {
		return nil, false, err
	}
	if cacheable(f) {
		_ = r.Cache.Set(ctx, key, buf.Bytes(), ArtifactTTL)
	}
	return buf.Bytes(), false, nil
}

// Open returns the package source for a repository location.
func (r *Runner) Open(ctx context.Context, repo, mode string) (source.Source, error) {
	m, err := source.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return r.open(ctx, repo, m)
}

// open leaves index warnings to the source: graph builds report them as
// diagnostics, and openLive logs them itself.
func (r *Runner) open(ctx context.Context, repo string, mode source.Mode) (source.Source, error) {
	return source.Open(ctx, repo, mode, source.Options{
		HTTP:  r.HTTP,
		Cache: r.Cache,
	})
}

// Index opens a live repository and returns its parsed index.
func (r *Runner) Index(ctx context.Context, repo, mode string) (*apk.Index, error) {
	live, err := r.openLive(ctx, repo, mode)
	if err != nil {
		return nil, err
	}
	return live.Index(), nil
}

// Info opens a live repository and returns the metadata record of one
// package, given by short name or archive filename.
func (r *Runner) Info(ctx context.Context, repo, mode, name string) (*apk.PackageInfo, error) {
	if err := deperrors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	live, err := r.openLive(ctx, repo, mode)
	if err != nil {
		return nil, err
	}
	return live.Info(ctx, name)
}

func (r *Runner) openLive(ctx context.Context, repo, mode string) (*source.Live, error) {
	src, err := r.Open(ctx, repo, mode)
	if err != nil {
		return nil, err
	}
	live, err := AsLive(repo, src)
	if err != nil {
		return nil, err
	}
	for _, w := range live.Warnings() {
		r.logger(Request{}).Warn(diagnosticMessage(graph.KindIndex), "err", w)
	}
	return live, nil
}

// AsLive returns src as a live source, or an UNSUPPORTED error naming repo
// when src has no index.
func AsLive(repo string, src source.Source) (*source.Live, error) {
	live, ok := src.(*source.Live)
	if !ok {
		return nil, deperrors.New(deperrors.ErrCodeUnsupported,
			"%s is a %s repository; only dir and file repositories have an index", repo, src.Name())
	}
	return live, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(req Request) *log.Logger {
	if req.Logger != nil {
		return req.Logger
	}
	if r.Logger != nil {
		return r.Logger
	}
	return discardLogger()
}

// GraphHash returns a content hash of g. It covers the root, the recorded
// nodes and the diagnostics, but not the run ID, so two traversals that saw
// the same repository hash equal.
func GraphHash(g *graph.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "root=%s max_depth=%d truncated=%t\n", g.Root, g.MaxDepth, g.Truncated)
	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "node %s %s %d %s\n", n.Name, n.Qualified, n.Depth, strings.Join(n.Dependencies, ","))
	}
	for _, d := range g.Diagnostics() {
		fmt.Fprintf(&b, "diag %s\n", d)
	}
	return cache.Hash([]byte(b.String()))
}

// json and yaml embed the run ID, which differs per run.
func cacheable(f render.Format) bool {
	return f == render.FormatText || f == render.FormatDOT || f == render.FormatSVG
}

func artifactKey(hash string, f render.Format, opts render.Options) string {
	return fmt.Sprintf("artifact:%s:%s:plain=%t:detailed=%t", hash, f, opts.Plain, opts.Detailed)
}

func diagnosticMessage(k graph.DiagnosticKind) string {
	switch k {
	case graph.KindUnknownPackage:
		return "package not in index"
	case graph.KindFetch:
		return "could not fetch package"
	case graph.KindArchive:
		return "could not read package archive"
	case graph.KindIndex:
		return "repository index unavailable"
	case graph.KindBudget:
		return "traversal stopped early"
	}
	return string(k)
}
