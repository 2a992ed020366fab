package subcommands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/servicemanager"
)

// UninstallCmd removes the daemon's platform service registration.
var UninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the daemon system service",
	Long: "Remove the daemon system service.\n\n" +
		"Stops the service, disables auto-start, and removes the launchd plist or " +
		"systemd unit file written by 'daemon install'.",
	Example: `  # Remove the daemon service
  pkmgraph daemon uninstall`,
	PreRunE: validateUninstall,
	RunE:    runUninstall,
}

func validateUninstall(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	mgr, err := servicemanager.NewDaemonManager()
	if err != nil {
		return fmt.Errorf("failed to initialize service manager; %w", err)
	}

	if err := mgr.Uninstall(context.Background()); err != nil {
		return fmt.Errorf("failed to uninstall service; %w", err)
	}

	if !isQuiet(cmd) {
		fmt.Fprintln(cmd.OutOrStdout(), "Daemon service uninstalled.")
	}
	return nil
}
