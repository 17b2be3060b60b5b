// Package extensions provides extension management commands for the relm CLI.
package extensions

import (
	"github.com/spf13/cobra"
)

// CreateExtensionsCmd creates the extensions command with all its subcommands.
func CreateExtensionsCmd() *cobra.Command {
	extensionsCmd := &cobra.Command{
		Use:     "extensions",
		Aliases: []string{"ext", "x"},
		Short:   "Extension management commands",
		Long:    `Commands for inspecting and reloading relm extensions.`,
	}

	extensionsCmd.AddCommand(createListCmd(), createReloadCmd(), createUnloadCmd(), createWatchCmd())
	return extensionsCmd
}
