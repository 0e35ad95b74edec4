package config

import (
	"os"
	"path/filepath"
)

// configDir returns ~/.config/likestats, or "." without a home directory.
func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(homeDir, ".config", "likestats")
}

// defaultDBPath returns the default database file path.
//
// Returns: ~/.config/likestats/history.db.
func defaultDBPath() string {
	return filepath.Join(configDir(), "history.db")
}

// DefaultConfigPath returns the default configuration file path.
//
// Returns: ~/.config/likestats/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}
