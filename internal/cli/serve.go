package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dima09182/depviz/pkg/pipeline"
	"github.com/Dima09182/depviz/pkg/server"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// command is interrupted.
const shutdownTimeout = 10 * time.Second

type serveOpts struct {
	addr        string
	repo        string
	mode        string
	maxDepth    int
	concurrency int
	budget      time.Duration
	maxNodes    int
}

func (o *serveOpts) apply(c *CLI, changed func(string) bool) {
	cfg := c.settings()
	if !changed("addr") {
		o.addr = cfg.Server.Addr
	}
	if !changed("repo") {
		o.repo = cfg.Repo
	}
	if !changed("mode") {
		o.mode = cfg.Mode
	}
	if !changed("max-depth") {
		o.maxDepth = cfg.MaxDepth
	}
	if !changed("concurrency") {
		o.concurrency = cfg.Concurrency
	}
	if !changed("budget") {
		o.budget = cfg.Budget
	}
	if !changed("max-nodes") {
		o.maxNodes = cfg.MaxNodes
	}
}

func (o *serveOpts) config() server.Config {
	return server.Config{
		Addr:        o.addr,
		Repo:        o.repo,
		Mode:        o.mode,
		MaxDepth:    o.maxDepth,
		Concurrency: o.concurrency,
		Budget:      o.budget,
		MaxNodes:    o.maxNodes,
	}
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency graphs over HTTP",
		Long: `Start an HTTP server bound to one repository.

Endpoints:
  GET /healthz                         liveness and version
  GET /v1/graph?package=NAME&max_depth=N&format=json|yaml|text|dot|svg
  GET /v1/resolve/NAME                 archive filename of a short name

Examples:
  depviz serve -r https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64
  depviz serve -r repo.txt -m test --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.apply(c, cmd.Flags().Changed)
			return c.runServe(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	f.StringVarP(&opts.repo, "repo", "r", "", "repository: URL, directory, APKINDEX.tar.gz or test graph file")
	f.StringVarP(&opts.mode, "mode", "m", "auto", "repository mode: auto, dir, file, test")
	f.IntVarP(&opts.maxDepth, "max-depth", "d", pipeline.DefaultMaxDepth, "depth used when a request omits max_depth")
	f.IntVar(&opts.concurrency, "concurrency", pipeline.DefaultConcurrency, "parallel fetches per level")
	f.DurationVar(&opts.budget, "budget", 0, "time budget per request (0 = none)")
	f.IntVar(&opts.maxNodes, "max-nodes", 0, "node limit per request (0 = no limit)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, o serveOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	// Fail at startup rather than on the first request.
	src, err := runner.Open(ctx, o.repo, o.mode)
	if err != nil {
		return err
	}

	srv := server.New(o.config(), runner, logger)
	printInfo("Serving %s repository on http://%s", src.Name(), srv.Addr())
	printDetail("repository: %s", o.repo)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
