// Package cmdinit implements the init command: scaffolding a notes vault
// and writing a default configuration file.
package cmdinit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/cmdutil"
	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/hashcache"
	"github.com/leefowlercu/pkmgraph/internal/notes"
)

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a notes vault and configuration file",
	Long: "Creates a default configuration file and the notes vault directory, " +
		"including the category folders and README placeholders the engine expects.\n\n" +
		"Run this once before using add, search, sync, or watch.",
	Example: `  # Default initialization, vault at ~/notes
  pkmgraph init

  # Custom vault location
  pkmgraph init --notes-dir ~/vaults/personal

  # Force overwrite an existing config
  pkmgraph init --force`,
	RunE: runInit,
}

func init() {
	InitCmd.Flags().String("notes-dir", "~/notes", "Notes vault directory")
	InitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	InitCmd.Flags().SortFlags = false
}

func runInit(cmd *cobra.Command, args []string) error {
	notesDir, _ := cmd.Flags().GetString("notes-dir")
	force, _ := cmd.Flags().GetBool("force")

	configPath := config.DefaultConfigPath()
	if !force && config.ConfigExistsAt(configPath) {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	notesDir, err := cmdutil.ResolvePath(notesDir)
	if err != nil {
		return fmt.Errorf("failed to resolve notes directory; %w", err)
	}
	cfg := config.NewDefaultConfig()
	cfg.Notes.Directory = notesDir
	cfg.Notes.KnowledgeBaseDir = filepath.Join(notesDir, config.DefaultKnowledgeBaseDirName)
	cfg.VectorStore.DatabasePath = filepath.Join(config.ConfigDir(), "vectors.db")

	tracker, err := hashcache.New(filepath.Join(cfg.Notes.KnowledgeBaseDir, "hashes.json"))
	if err != nil {
		return fmt.Errorf("failed to create hash cache; %w", err)
	}

	notesMgr := notes.New(notesDir, tracker)
	stats, err := notesMgr.Init()
	if err != nil {
		return fmt.Errorf("failed to initialize notes directory; %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.VectorStore.DatabasePath), 0o755); err != nil {
		return fmt.Errorf("failed to create vector store directory; %w", err)
	}

	if err := config.Write(&cfg, configPath); err != nil {
		return fmt.Errorf("failed to write config; %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized notes vault at %s\n", notesDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote configuration to %s\n", configPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d existing notes (%d reparsed)\n", stats.CacheHits+stats.Reparses, stats.Reparses)
	return nil
}
