package extensions

import (
	"fmt"

	"github.com/lerenn/release-manager/cmd/relm/internal/cli"
	releasemanager "github.com/lerenn/release-manager/pkg/release-manager"
	"github.com/spf13/cobra"
)

func createReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload <name>",
		Short: "Reload an extension from its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(func(rm releasemanager.ReleaseManager) error {
				d, err := rm.ReloadExtension(args[0])
				if err != nil {
					return err
				}
				displayDescriptor(cmd.OutOrStdout(), d)
				return nil
			})
		},
	}
}

func createUnloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unload <name>",
		Short: "Unload an extension and check its teardown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Run(func(rm releasemanager.ReleaseManager) error {
				if err := rm.UnloadExtension(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unloaded %s\n", args[0])
				return nil
			})
		},
	}
}
