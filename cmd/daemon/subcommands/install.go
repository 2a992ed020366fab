package subcommands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/servicemanager"
)

// InstallCmd installs the daemon as a platform service (launchd or systemd).
var InstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the daemon as a system service",
	Long: "Install the daemon as a system service.\n\n" +
		"On macOS this writes a launchd agent under ~/Library/LaunchAgents and loads " +
		"it. On Linux this writes a systemd user unit under ~/.config/systemd/user and " +
		"enables it. Either way, the daemon starts automatically and restarts on failure.",
	Example: `  # Install and enable the daemon service
  pkmgraph daemon install`,
	PreRunE: validateInstall,
	RunE:    runInstall,
}

func validateInstall(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	mgr, err := servicemanager.NewDaemonManager()
	if err != nil {
		return fmt.Errorf("failed to initialize service manager; %w", err)
	}

	if err := mgr.Install(context.Background()); err != nil {
		return fmt.Errorf("failed to install service; %w", err)
	}

	if !isQuiet(cmd) {
		fmt.Fprintln(cmd.OutOrStdout(), "Daemon service installed and started.")
	}
	return nil
}
