package main

import (
	"fmt"

	"github.com/lerenn/release-manager/cmd/relm/internal/cli"
	"github.com/spf13/cobra"
)

func createInitCmd() *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init [--force]",
		Short: "Write the default relm configuration",
		Long: `Write the commented default configuration to the config path.

Examples:
  relm init
  relm init -c ./relm.yaml --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := cli.NewConfigManager()
			if err := manager.InitConfig(force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", manager.GetConfigPath())
			return nil
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")
	return initCmd
}
