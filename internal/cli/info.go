package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var opts repoOpts

	cmd := &cobra.Command{
		Use:   "info <package>",
		Short: "Show the metadata record of a package",
		Long: `Fetch one package archive and print its .PKGINFO record: version,
description, license and declared dependencies.

Examples:
  depviz info busybox -r https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64
  depviz info musl-1.2.5-r0.apk -r /srv/mirror/main/x86_64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.apply(c.settings(), cmd.Flags().Changed)

			runner, err := c.newRunner()
			if err != nil {
				return err
			}
			defer runner.Close()

			info, err := runner.Info(cmd.Context(), opts.repo, opts.mode, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, StyleTitle.Render(info.Name+" "+info.Version))
			fields := []struct{ key, value string }{
				{"description", info.Description},
				{"url", info.URL},
				{"license", info.License},
				{"arch", info.Arch},
				{"origin", info.Origin},
				{"file", info.Filename()},
			}
			for _, f := range fields {
				if f.value != "" {
					printKeyValue(out, f.key, f.value)
				}
			}
			if info.Size > 0 {
				printKeyValue(out, "size", strconv.FormatInt(info.Size, 10))
			}
			printKeyValue(out, "depends", listOrNone(info.Depends))
			if len(info.Provides) > 0 {
				printKeyValue(out, "provides", strings.Join(info.Provides, " "))
			}
			return nil
		},
	}
	addRepoFlags(cmd, &opts)
	return cmd
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, " ")
}
