package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/lerenn/release-manager/cmd/relm/internal/cli"
	"github.com/lerenn/release-manager/pkg/deploy"
	releasemanager "github.com/lerenn/release-manager/pkg/release-manager"
	"github.com/spf13/cobra"
)

func createDeployCmd() *cobra.Command {
	var (
		opts     deploy.Options
		settings []string
	)

	deployCmd := &cobra.Command{
		Use:   "deploy <strategy> [--dry-run] [--allow-dirty] [--force] [--set key=value]...",
		Short: "Run a deployment strategy",
		Long: `Run a deployment strategy. The working tree must be clean unless --allow-dirty
or --force is given. With --dry-run the plan is printed and nothing is deployed.

Examples:
  relm deploy docs --dry-run
  relm deploy github-release --set package=core`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := cli.Settings(settings)
			if err != nil {
				return err
			}
			opts.Settings = parsed

			return cli.Run(func(rm releasemanager.ReleaseManager) error {
				res, err := rm.Deploy(releasemanager.DeployParams{
					Context:  cmd.Context(),
					Strategy: args[0],
					Options:  opts,
				})
				displayDeployment(cmd.OutOrStdout(), res)
				return err
			})
		},
	}

	deployCmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Print the plan without deploying")
	deployCmd.Flags().BoolVar(&opts.AllowDirty, "allow-dirty", false, "Deploy with uncommitted changes")
	deployCmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Deploy with uncommitted changes, with a warning")
	deployCmd.Flags().StringArrayVar(&settings, "set", nil, "Strategy setting, as key=value")
	return deployCmd
}

func displayDeployment(out io.Writer, res deploy.Result) {
	for _, step := range res.Plan {
		fmt.Fprintf(out, "  %s\n", step)
	}
	if !res.Success {
		return
	}

	keys := make([]string, 0, len(res.Details))
	for k := range res.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %v\n", k, res.Details[k])
	}
	fmt.Fprintf(out, "Deployed with %s in %s\n", res.StrategyKey, res.Duration)
}

func createStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List deployment strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.Run(func(rm releasemanager.ReleaseManager) error {
				for _, info := range rm.ListStrategies() {
					icon := info.Icon
					if icon == "" {
						icon = "•"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %-16s %s\n", icon, info.Key, info.Description)
				}
				return nil
			})
		},
	}
}
