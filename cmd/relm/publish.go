package main

import (
	"fmt"
	"io"

	"github.com/lerenn/release-manager/cmd/relm/internal/cli"
	"github.com/lerenn/release-manager/pkg/release"
	releasemanager "github.com/lerenn/release-manager/pkg/release-manager"
	"github.com/spf13/cobra"
)

func createPublishCmd() *cobra.Command {
	var (
		versions []string
		bump     string
		dryRun   bool
	)

	publishCmd := &cobra.Command{
		Use:   "publish [packages...] [--version key=x.y.z]... [--bump patch|minor|major] [--dry-run]",
		Short: "Publish packages in dependency order",
		Long: `Build, version and publish the selected packages (all when none is given).
Dependencies are published before their dependents. A failing package does not stop the batch.

Examples:
  relm publish --bump patch
  relm publish core ui --version core=1.4.0 --version ui=2.0.0
  relm publish --bump minor --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := cli.ParseAssignments(versions)
			if err != nil {
				return err
			}

			return cli.Run(func(rm releasemanager.ReleaseManager) error {
				batch, err := rm.Publish(releasemanager.PublishParams{
					Context:  cmd.Context(),
					Packages: args,
					Versions: pairs,
					Bump:     bump,
					DryRun:   dryRun,
				})
				if err != nil {
					return err
				}

				displayBatch(cmd.OutOrStdout(), batch)
				if !batch.OK() {
					return fmt.Errorf("%w: %s", cli.ErrPublishFailed, batch.Summary())
				}
				return nil
			})
		},
	}

	publishCmd.Flags().StringArrayVar(&versions, "version", nil, "Next version of a package, as key=x.y.z")
	publishCmd.Flags().StringVarP(&bump, "bump", "b", "", "Bump packages without an explicit version: patch, minor or major")
	publishCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Build and pack without persisting versions or publishing")
	return publishCmd
}

// displayBatch prints one line per package followed by the summary.
func displayBatch(out io.Writer, batch release.BatchResult) {
	for _, res := range batch.Results {
		switch {
		case res.Skipped:
			fmt.Fprintf(out, "  - %s skipped\n", res.PackageKey)
		case res.Success:
			suffix := ""
			if res.DryRun {
				suffix = " (dry run)"
			}
			fmt.Fprintf(out, "  ✓ %s %s -> %s%s\n", res.PackageKey, res.PreviousVersion, res.Version, suffix)
		default:
			fmt.Fprintf(out, "  ✗ %s: %v\n", res.PackageKey, res.Err)
		}
		if cli.Verbose {
			for _, step := range res.Steps {
				state := "planned"
				switch {
				case step.DryRunWrite:
					state = "dry-run write, " + step.Duration.String()
				case step.Executed:
					state = step.Duration.String()
				}
				fmt.Fprintf(out, "      %-8s %s [%s]\n", step.Stage, step.Description, state)
			}
		}
	}
	fmt.Fprintln(out, batch.Summary())
}
