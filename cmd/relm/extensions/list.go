package extensions

import (
	"fmt"
	"io"

	"github.com/lerenn/release-manager/cmd/relm/internal/cli"
	"github.com/lerenn/release-manager/pkg/extension"
	releasemanager "github.com/lerenn/release-manager/pkg/release-manager"
	"github.com/spf13/cobra"
)

func createListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "l"},
		Short:   "List loaded extensions",
		Long: `List loaded extensions and the candidates that were skipped.

Examples:
  relm extensions list
  relm ext ls`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.Run(func(rm releasemanager.ReleaseManager) error {
				out := cmd.OutOrStdout()
				list := rm.ListExtensions()
				if len(list) == 0 {
					fmt.Fprintln(out, "No extensions loaded.")
				}
				for _, d := range list {
					displayDescriptor(out, d)
				}

				for _, s := range rm.LoadReport().Skipped {
					fmt.Fprintf(out, "  ! %s: %v\n", s.Path, s.Err)
				}

				stats := rm.ExtensionStats()
				fmt.Fprintf(out, "%d extensions, %d hooks, %d strategies\n", stats.Extensions, stats.Hooks, stats.Strategies)
				return nil
			})
		},
	}
}

func displayDescriptor(out io.Writer, d extension.Descriptor) {
	source := d.SourcePath
	if d.BuiltIn {
		source = "built-in"
	}
	fmt.Fprintf(out, "  %s %s (%s)\n", d.Name, d.Version, source)
	if d.Description != "" {
		fmt.Fprintf(out, "      %s\n", d.Description)
	}
	if d.Hooks > 0 || len(d.Strategies) > 0 {
		fmt.Fprintf(out, "      %d hooks, strategies: %v\n", d.Hooks, d.Strategies)
	}
}
