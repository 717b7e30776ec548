package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dima09182/depviz/internal/config"
	"github.com/Dima09182/depviz/pkg/buildinfo"
	"github.com/Dima09182/depviz/pkg/cache"
	"github.com/Dima09182/depviz/pkg/observability"
	"github.com/Dima09182/depviz/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "depviz"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// The root command itself builds a graph, so the short form
//
//	depviz -p busybox -r https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64
//
// is the same as `depviz graph ...`.
func (c *CLI) RootCommand() *cobra.Command {
	opts := newGraphOpts()

	root := &cobra.Command{
		Use:   appName,
		Short: "depviz builds the dependency graph of an Alpine package",
		Long: `depviz reads an APK repository (a mirror URL, a local directory, an
APKINDEX.tar.gz file or a plain-text test graph) and builds the transitive
dependency graph of one package, breadth-first and bounded by depth.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("package") {
				return cmd.Help()
			}
			return c.runGraph(cmd, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/depviz/config.toml)")
	addGraphFlags(root, opts)

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.indexCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads .env and the config file once per invocation and installs the
// debug hooks under --verbose.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg

	if c.verbose() {
		hooks := &debugHooks{logger: c.Logger}
		observability.SetTraversalHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// settings returns the loaded configuration, or the defaults when setup has
// not run (commands invoked directly in tests).
func (c *CLI) settings() *config.Config {
	if c.config == nil {
		cfg := config.Default()
		c.config = &cfg
	}
	return c.config
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The cache lives for this
// process only.
func (c *CLI) newRunner() (*pipeline.Runner, error) {
	lru, err := cache.NewLRUCache(cache.DefaultLRUSize)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(lru, c.Logger)
	r.HTTP = c.settings().HTTPOptions(buildinfo.UserAgent())
	return r, nil
}

// =============================================================================
// Terminal Helpers
// =============================================================================

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
