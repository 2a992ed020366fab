package config

import (
	"os"
	"os/user"
	"path/filepath"
)

// ExpandPath expands a leading ~ in path to the user's home directory.
// Only expands "~" alone or "~/..." patterns. Patterns like "~user" are not
// expanded. Returns the path unchanged if it doesn't start with ~/ or if the
// home directory cannot be determined. Use this when consuming path fields
// from a loaded Config that may contain tildes.
func ExpandPath(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	if len(path) > 1 && path[1] != '/' {
		return path
	}

	home := resolveHomeDir()
	if home == "" {
		return path
	}

	if len(path) == 1 {
		return home
	}

	return filepath.Join(home, path[2:])
}

func resolveHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}

	u, err := user.Current()
	if err != nil {
		return ""
	}

	return u.HomeDir
}
