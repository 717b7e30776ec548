package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dima09182/depviz/internal/config"
	"github.com/Dima09182/depviz/pkg/fetch"
	"github.com/Dima09182/depviz/pkg/observability"
	"github.com/Dima09182/depviz/pkg/pipeline"
	"github.com/Dima09182/depviz/pkg/render"
)

// graphOpts holds the command-line flags shared by the root and graph
// commands. Flags the user did not set are filled from the config.
type graphOpts struct {
	pkg         string        // root package
	repo        string        // repository location
	mode        string        // auto, dir, file or test
	maxDepth    int           // deepest level recorded
	concurrency int           // parallel fetches per level
	timeout     time.Duration // per HTTP request
	retries     int           // attempts per file
	budget      time.Duration // whole traversal; 0 means none
	maxNodes    int           // node limit; 0 means none
	format      string        // output format
	output      string        // output file path (stdout if empty)
	plain       bool          // no terminal styling
	detailed    bool          // qualified names in dot/svg labels
}

func newGraphOpts() *graphOpts {
	return &graphOpts{}
}

// addGraphFlags registers the graph flags on cmd. Defaults shown in --help
// are the built-in ones; a config file or DEPVIZ_* variable replaces them.
func addGraphFlags(cmd *cobra.Command, o *graphOpts) {
	f := cmd.Flags()
	f.StringVarP(&o.pkg, "package", "p", "", "package to analyse (short name or archive filename)")
	f.StringVarP(&o.repo, "repo", "r", "", "repository: URL, directory, APKINDEX.tar.gz or test graph file")
	f.StringVarP(&o.mode, "mode", "m", "auto", "repository mode: auto, dir, file, test")
	f.IntVarP(&o.maxDepth, "max-depth", "d", pipeline.DefaultMaxDepth, "maximum dependency depth")
	f.IntVar(&o.concurrency, "concurrency", pipeline.DefaultConcurrency, "parallel fetches per level")
	f.DurationVar(&o.timeout, "timeout", fetch.DefaultTimeout, "timeout per HTTP request")
	f.IntVar(&o.retries, "retries", fetch.DefaultAttempts, "attempts per file on transient HTTP errors")
	f.DurationVar(&o.budget, "budget", 0, "time budget for the whole traversal (0 = none)")
	f.IntVar(&o.maxNodes, "max-nodes", 0, "stop after this many packages (0 = no limit)")
	f.StringVarP(&o.format, "format", "f", "", "output format: text (default), json, yaml, dot, svg")
	f.StringVarP(&o.output, "output", "o", "", "output file (stdout if empty; format inferred from extension)")
	f.BoolVar(&o.plain, "plain", false, "disable colors in text output")
	f.BoolVar(&o.detailed, "detailed", false, "show archive filenames and depths in dot/svg output")
}

// apply fills every flag the user did not set from cfg.
func (o *graphOpts) apply(cfg *config.Config, changed func(string) bool) {
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
	if !changed("timeout") {
		o.timeout = cfg.Timeout
	}
	if !changed("retries") {
		o.retries = cfg.Retries
	}
	if !changed("budget") {
		o.budget = cfg.Budget
	}
	if !changed("max-nodes") {
		o.maxNodes = cfg.MaxNodes
	}
	if !changed("format") {
		o.format = cfg.Format
		if f, ok := render.FormatFromPath(o.output); ok && o.output != "" {
			o.format = string(f)
		}
	}
}

func (o *graphOpts) request() pipeline.Request {
	return pipeline.Request{
		Package:     o.pkg,
		Repo:        o.repo,
		Mode:        o.mode,
		MaxDepth:    o.maxDepth,
		Concurrency: o.concurrency,
		Budget:      o.budget,
		MaxNodes:    o.maxNodes,
		Format:      o.format,
		Plain:       o.plain,
		Detailed:    o.detailed,
	}
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	opts := newGraphOpts()

	cmd := &cobra.Command{
		Use:   "graph [package]",
		Short: "Build the dependency graph of a package",
		Long: `Build the transitive dependency graph of a package, breadth-first up to
--max-depth levels below it.

Packages that are missing from the index, or whose archives cannot be fetched
or read, are reported as warnings and the traversal continues.

Examples:
  depviz graph busybox -r https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64
  depviz graph -p busybox -r /srv/mirror/main/x86_64 -d 2 -o busybox.json
  depviz graph -p A -r repo.txt -m test -f dot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cmd.Flags().Changed("package") {
					return fmt.Errorf("give the package either as an argument or with --package, not both")
				}
				opts.pkg = args[0]
			}
			return c.runGraph(cmd, opts)
		},
	}
	addGraphFlags(cmd, opts)
	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, o *graphOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	o.apply(c.settings(), cmd.Flags().Changed)

	stdout := cmd.OutOrStdout()
	req := o.request()
	if o.output != "" || !isTerminal(stdout) {
		req.Plain = true
	}
	if err := req.Validate(); err != nil {
		return err
	}

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()
	runner.HTTP.Timeout = o.timeout
	runner.HTTP.Attempts = o.retries

	logger.Info("building graph",
		"package", req.Package,
		"repo", req.Repo,
		"mode", req.Mode,
		"max_depth", req.MaxDepth)

	var spinner *Spinner
	if !c.verbose() && isTerminal(statusOut) {
		spinner = newSpinnerWithContext(ctx, "Resolving "+req.Package)
		prev := observability.Traversal()
		observability.SetTraversalHooks(&spinnerHooks{spinner: spinner, root: req.Package})
		defer observability.SetTraversalHooks(prev)
		spinner.Start()
	}

	res, err := runner.Execute(ctx, req)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	g := res.Graph
	if _, ok := g.Node(g.Root); !ok {
		printWarning("package %s was not found in %s", req.Package, req.Repo)
	}
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.Diagnostics, res.CacheInfo.RenderHit)

	if err := writeOutput(stdout, o.output, res.Artifact); err != nil {
		return err
	}
	if o.output != "" && res.Format == render.FormatJSON {
		printNextStep("Render it as SVG", fmt.Sprintf("%s render %s -o %s.svg", appName, o.output, g.Root))
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Wrote output")
	printFile(path)
	return nil
}
