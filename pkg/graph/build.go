package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dima09182/depviz/pkg/apk"
	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/observability"
	"github.com/Dima09182/depviz/pkg/source"
)

const (
	DefaultMaxDepth    = 5 // Depth bound when none is given on the command line
	DefaultConcurrency = 8 // Parallel fetches per BFS level
)

// ErrBudgetExceeded is the error of the diagnostic added when a traversal
// runs out of time or nodes.
var ErrBudgetExceeded = errors.New("traversal budget exceeded")

// RunContext holds everything one traversal needs. It is not modified by
// [Build].
type RunContext struct {
	Source      source.Source        // Where dependencies come from (required)
	MaxDepth    int                  // Deepest level recorded; must be >= 0
	Concurrency int                  // Parallel fetches per level (default DefaultConcurrency)
	Budget      time.Duration        // Wall-clock limit; 0 means none
	MaxNodes    int                  // Node limit; 0 means none
	Logger      func(string, ...any) // Progress callback (optional)
}

func (rc RunContext) withDefaults() RunContext {
	if rc.Concurrency <= 0 {
		rc.Concurrency = DefaultConcurrency
	}
	if rc.Logger == nil {
		rc.Logger = func(string, ...any) {}
	}
	return rc
}

// Validate checks the arguments of a traversal.
func (rc RunContext) Validate() error {
	if rc.Source == nil {
		return deperrors.New(deperrors.ErrCodeInvalidInput, "no package source")
	}
	return deperrors.ValidateMaxDepth(rc.MaxDepth)
}

type item struct {
	id    string // identifier handed to the source
	name  string // canonical key
	depth int
}

type outcome struct {
	node    Node
	skipped bool
	diag    *Diagnostic
}

// Build traverses the dependencies of root and returns the resulting graph.
//
// Per-package failures become diagnostics (see the package documentation).
// Build fails only for invalid arguments or when ctx is cancelled.
func Build(ctx context.Context, rc RunContext, root string) (*Graph, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	rc = rc.withDefaults()

	rootName := apk.CanonicalName(root)
	if rootName == "" {
		return nil, deperrors.New(deperrors.ErrCodeInvalidPackage, "root package cannot be empty")
	}

	rootID := strings.Fields(root)[0]

	g := New(rootName)
	g.RunID = uuid.NewString()
	g.Source = rc.Source.Name()
	g.MaxDepth = rc.MaxDepth

	if w, ok := rc.Source.(source.Warner); ok {
		for _, err := range w.Warnings() {
			g.Diagnose(Diagnostic{Kind: KindIndex, Err: err})
		}
	}

	hooks := observability.Traversal()
	hooks.OnBuildStart(ctx, g.Source, rootName, rc.MaxDepth)
	start := time.Now()

	err := traverse(ctx, rc, g, rootID, start)
	hooks.OnBuildComplete(ctx, g.Source, rootName, g.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func traverse(ctx context.Context, rc RunContext, g *Graph, root string, start time.Time) error {
	hooks := observability.Traversal()
	visited := make(map[string]bool)
	level := []item{{id: root, depth: 0}}

	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Dequeue the whole level in FIFO order; filtering happens here,
		// never at enqueue time.
		var work []item
		for _, it := range level {
			if it.depth > rc.MaxDepth {
				continue
			}
			it.name = apk.CanonicalName(it.id)
			if it.name == "" || visited[it.name] {
				continue
			}
			visited[it.name] = true
			work = append(work, it)
		}
		if len(work) == 0 {
			break
		}
		depth := work[0].depth
		if rc.MaxNodes > 0 && g.Len()+len(work) > rc.MaxNodes {
			work = work[:rc.MaxNodes-g.Len()]
			g.Truncated = true
			g.Diagnose(Diagnostic{Kind: KindBudget, Err: fmt.Errorf("%w: node limit %d reached", ErrBudgetExceeded, rc.MaxNodes)})
		}

		hooks.OnLevel(ctx, depth, len(work))
		rc.Logger("level %d: %d packages", depth, len(work))

		results := make([]outcome, len(work))
		var eg errgroup.Group
		eg.SetLimit(rc.Concurrency)
		for i, it := range work {
			eg.Go(func() error {
				results[i] = visit(ctx, rc.Source, it)
				return nil
			})
		}
		_ = eg.Wait()
		if err := ctx.Err(); err != nil {
			return err
		}

		var next []item
		for _, r := range results {
			if r.diag != nil {
				g.Diagnose(*r.diag)
			}
			if r.skipped {
				continue
			}
			g.Add(r.node)
			for _, dep := range r.node.Dependencies {
				// The source gets the declared token; only the key is canonical.
				fields := strings.Fields(dep)
				if len(fields) == 0 {
					continue
				}
				next = append(next, item{id: fields[0], depth: r.node.Depth + 1})
			}
		}

		if g.Truncated {
			break
		}
		if rc.Budget > 0 && time.Since(start) > rc.Budget && len(next) > 0 {
			g.Truncated = true
			g.Diagnose(Diagnostic{Kind: KindBudget, Err: fmt.Errorf("%w: stopped after depth %d (%s)", ErrBudgetExceeded, depth, rc.Budget)})
			break
		}
		level = next
	}
	return nil
}

func visit(ctx context.Context, src source.Source, it item) outcome {
	hooks := observability.Traversal()
	hooks.OnNodeStart(ctx, it.name, it.depth)
	start := time.Now()

	node := Node{Name: it.name, Depth: it.depth, Dependencies: []string{}}
	out := outcome{node: node}

	qualified, err := src.Resolve(ctx, it.id)
	if err == nil {
		out.node.Qualified = qualified
		var deps []string
		if deps, err = src.Dependencies(ctx, qualified); err == nil {
			out.node.Dependencies = deps
		}
	}
	if err != nil {
		kind := classify(err)
		out.diag = &Diagnostic{Package: it.name, Kind: kind, Err: err}
		out.skipped = kind == KindUnknownPackage
	}

	hooks.OnNodeComplete(ctx, it.name, it.depth, len(out.node.Dependencies), time.Since(start), err)
	return out
}

func classify(err error) DiagnosticKind {
	switch {
	case errors.Is(err, source.ErrUnknownPackage):
		return KindUnknownPackage
	case errors.Is(err, apk.ErrArchiveRead):
		return KindArchive
	default:
		return KindFetch
	}
}
