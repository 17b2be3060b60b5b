package extensions

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/lerenn/release-manager/cmd/relm/internal/cli"
	"github.com/lerenn/release-manager/pkg/extension"
	releasemanager "github.com/lerenn/release-manager/pkg/release-manager"
	"github.com/spf13/cobra"
)

func createWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload extensions when their sources change",
		Long: `Watch the extension directories and load, reload or unload extensions as their
sources change, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return cli.Run(func(rm releasemanager.ReleaseManager) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Watching %d extensions, press Ctrl+C to stop\n", rm.ExtensionStats().Extensions)

				// The loader is owned by the watch goroutine until it returns.
				changes := make(chan extension.Change)
				done := make(chan error, 1)
				go func() {
					done <- rm.WatchExtensions(releasemanager.WatchParams{Context: ctx, Changes: changes})
				}()

				for {
					select {
					case c := <-changes:
						displayChange(out, c)
					case err := <-done:
						return err
					}
				}
			})
		},
	}
}

func displayChange(out io.Writer, c extension.Change) {
	name := c.Name
	if name == "" {
		name = c.Path
	}
	if c.Err != nil {
		fmt.Fprintf(out, "  ✗ %s %s: %v\n", c.Action, name, c.Err)
		return
	}
	fmt.Fprintf(out, "  ✓ %s %s\n", c.Action, name)
}
