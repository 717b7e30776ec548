package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	gio "github.com/Dima09182/depviz/pkg/io"
	"github.com/Dima09182/depviz/pkg/render"
)

type renderOpts struct {
	format   string
	output   string
	plain    bool
	detailed bool
}

// renderCommand creates the render command, which re-renders a graph saved
// as JSON without touching the repository again.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a saved graph in another format",
		Long: `Render a graph previously written with -f json as text, yaml, dot or svg.

Examples:
  depviz render busybox.json -o busybox.svg
  depviz render busybox.json -f dot --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "", "output format: text (default), json, yaml, dot, svg")
	f.StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty; format inferred from extension)")
	f.BoolVar(&opts.plain, "plain", false, "disable colors in text output")
	f.BoolVar(&opts.detailed, "detailed", false, "show archive filenames and depths in dot/svg output")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, o renderOpts) error {
	prog := newProgress(loggerFromContext(cmd.Context()))

	name := o.format
	if name == "" {
		if f, ok := render.FormatFromPath(o.output); ok && o.output != "" {
			name = string(f)
		}
	}
	format, err := render.ParseFormat(name)
	if err != nil {
		return err
	}

	g, err := gio.ImportJSON(input)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	opts := render.Options{
		Plain:    o.plain || o.output != "" || !isTerminal(stdout),
		Detailed: o.detailed,
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, g, format, opts); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s as %s", g.Root, format))
	return writeOutput(stdout, o.output, buf.Bytes())
}
