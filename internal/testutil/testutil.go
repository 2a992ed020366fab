// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/pkmgraph/internal/config"
)

// TestEnv provides an isolated test environment with its own config
// directory and a ready-to-use Config pointed at paths under it.
type TestEnv struct {
	t         *testing.T
	ConfigDir string
	Config    *config.Config
}

// NewTestEnv creates an isolated test environment. Every path in the
// returned Config lives under a fresh t.TempDir(), so parallel tests
// never share state.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	configDir := filepath.Join(t.TempDir(), "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create test config dir: %v", err)
	}

	notesDir := filepath.Join(t.TempDir(), "notes")
	if err := os.MkdirAll(notesDir, 0755); err != nil {
		t.Fatalf("failed to create test notes dir: %v", err)
	}

	cfg := config.NewDefaultConfig()
	cfg.Notes.Directory = notesDir
	cfg.Notes.KnowledgeBaseDir = filepath.Join(notesDir, config.DefaultKnowledgeBaseDirName)
	cfg.VectorStore.DatabasePath = filepath.Join(configDir, "vectors.db")
	cfg.Daemon.PIDFile = filepath.Join(configDir, "daemon.pid")

	return &TestEnv{
		t:         t,
		ConfigDir: configDir,
		Config:    &cfg,
	}
}

// CreateTestDir creates a test directory within the test environment's temp space.
// Returns the absolute path to the created directory.
func (e *TestEnv) CreateTestDir(name string) string {
	e.t.Helper()

	testDataDir := filepath.Join(e.t.TempDir(), "testdata", name)
	if err := os.MkdirAll(testDataDir, 0755); err != nil {
		e.t.Fatalf("failed to create test dir %s: %v", name, err)
	}
	return testDataDir
}

// CreateTestFile creates a test file with the given content.
// Returns the absolute path to the created file.
func (e *TestEnv) CreateTestFile(dir, name, content string) string {
	e.t.Helper()

	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to create test file %s: %v", filePath, err)
	}
	return filePath
}
