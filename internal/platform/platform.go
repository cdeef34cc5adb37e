// Package platform provides OS-aware helpers for paths and directories.
// All code that needs to behave differently per OS must use this package.
// Keep runtime.GOOS checks here instead of scattering them across the codebase.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultWorkDir returns the default data directory for the relay daemon.
func DefaultWorkDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "llm-token-optimizer")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "llm-token-optimizer")
	default:
		return filepath.Join(home, ".local", "share", "llm-token-optimizer")
	}
}

// DefaultClientConfigDir returns the config directory for the client CLI.
func DefaultClientConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "llm-token-optimizer")
}

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("platform.EnsureDir: %w", err)
	}
	return nil
}
