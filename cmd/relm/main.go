// Package main provides the command-line interface for relm.
package main

import (
	"log"

	"github.com/lerenn/release-manager/cmd/relm/extensions"
	"github.com/lerenn/release-manager/cmd/relm/internal/cli"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relm",
		Short: "Release Manager - multi-package publish and deploy orchestration",
		Long: `Publish interdependent packages in dependency order and deploy build output
through pluggable strategies, extended by Go script extensions.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&cli.Quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&cli.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&cli.ConfigPath, "config", "c", "", "Specify a custom config file path")
	rootCmd.PersistentFlags().StringVar(&cli.EnvFile, "env-file", cli.EnvFile, "Load environment variables from this file")

	rootCmd.AddCommand(
		createInitCmd(),
		createPublishCmd(),
		createOrderCmd(),
		createPackagesCmd(),
		createDeployCmd(),
		createStrategiesCmd(),
		extensions.CreateExtensionsCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
