package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// File permission defaults shared across the project.
const (
	PermDir  = os.FileMode(0o755)
	PermFile = os.FileMode(0o644)
	PermExec = os.FileMode(0o755)
)

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ExpandUser expands a leading "~" or "~/" in path to the user's home
// directory. Paths without a tilde are returned unchanged.
func ExpandUser(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
