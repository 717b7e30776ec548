package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dima09182/depviz/internal/config"
	deperrors "github.com/Dima09182/depviz/pkg/errors"
)

// repoOpts holds the repository flags of the index and info commands.
type repoOpts struct {
	repo string
	mode string
}

func addRepoFlags(cmd *cobra.Command, o *repoOpts) {
	cmd.Flags().StringVarP(&o.repo, "repo", "r", "", "repository: URL, directory or APKINDEX.tar.gz")
	cmd.Flags().StringVarP(&o.mode, "mode", "m", "auto", "repository mode: auto, dir, file")
}

func (o *repoOpts) apply(cfg *config.Config, changed func(string) bool) {
	if !changed("repo") {
		o.repo = cfg.Repo
	}
	if !changed("mode") {
		o.mode = cfg.Mode
	}
}

// indexCommand creates the index command.
func (c *CLI) indexCommand() *cobra.Command {
	var opts repoOpts
	var list bool

	cmd := &cobra.Command{
		Use:   "index [name...]",
		Short: "Show a repository index or resolve names through it",
		Long: `Without arguments, print the number of packages in the repository index
(and every name with --list). With arguments, print the archive filename each
name resolves to.

Examples:
  depviz index -r https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64
  depviz index -r ./APKINDEX.tar.gz busybox musl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.apply(c.settings(), cmd.Flags().Changed)
			return c.runIndex(cmd, opts, list, args)
		},
	}
	addRepoFlags(cmd, &opts)
	cmd.Flags().BoolVar(&list, "list", false, "list every package name")
	return cmd
}

func (c *CLI) runIndex(cmd *cobra.Command, opts repoOpts, list bool, names []string) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx))

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	idx, err := runner.Index(ctx, opts.repo, opts.mode)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Read index of %s", opts.repo))

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		printKeyValue(out, "packages", strconv.Itoa(idx.Len()))
		if list {
			for _, name := range idx.Names() {
				fmt.Fprintln(out, name)
			}
		}
		return nil
	}

	var missing []string
	for _, name := range names {
		file, ok := idx.Resolve(name)
		if !ok {
			missing = append(missing, name)
			printWarning("%s is not in the index", name)
			continue
		}
		printKeyValue(out, name, file)
	}
	if len(missing) > 0 {
		return deperrors.New(deperrors.ErrCodePackageNotFound, "not in the index: %s", strings.Join(missing, ", "))
	}
	return nil
}
