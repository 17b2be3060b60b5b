package main

import (
	"fmt"
	"strings"

	"github.com/lerenn/release-manager/cmd/relm/internal/cli"
	releasemanager "github.com/lerenn/release-manager/pkg/release-manager"
	"github.com/spf13/cobra"
)

func createOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order [packages...]",
		Short: "Print the publish order",
		Long: `Print the selected packages (all when none is given) in dependency order.

Examples:
  relm order
  relm order ui core`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(func(rm releasemanager.ReleaseManager) error {
				order, err := rm.Order(args)
				if err != nil {
					return err
				}
				for i, key := range order {
					fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, key)
				}
				return nil
			})
		},
	}
}

func createPackagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "packages",
		Aliases: []string{"pkgs"},
		Short:   "List configured packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.Run(func(rm releasemanager.ReleaseManager) error {
				infos, err := rm.ListPackages()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, p := range infos {
					version := p.Version
					if p.Err != nil {
						version = "?"
					}
					line := fmt.Sprintf("  %s (%s) %s", p.Key, p.Name, version)
					if len(p.Dependencies) > 0 {
						line += " <- " + strings.Join(p.Dependencies, ", ")
					}
					if p.SkipPublish {
						line += " [skip publish]"
					}
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
}
