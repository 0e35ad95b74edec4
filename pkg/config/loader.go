package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig      = "LIKESTATS_CONFIG"
	EnvAccessToken = "LIKESTATS_ACCESS_TOKEN"
	EnvUserID      = "LIKESTATS_USER_ID"
	EnvBaseURL     = "LIKESTATS_BASE_URL"
	EnvDB          = "LIKESTATS_DB"
	EnvLogLevel    = "LIKESTATS_LOG_LEVEL"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables (after loading .env files)
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads defaults overlaid with a specific file.
	LoadFromFile(path string) (*Config, error)

	// Path returns the configuration file Load reads, or "" if none exists.
	Path() string
}

// loader implements the Loader interface.
type loader struct {
	configPath string
	envFiles   []string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, LIKESTATS_CONFIG is used, then the first existing
// file of:
// 1. ./likestats.yaml (current directory)
// 2. ~/.config/likestats/config.yaml.
//
// envFiles are loaded with godotenv before environment overrides are read;
// variables already set in the process are never replaced. Without envFiles
// ./.env is tried.
func NewLoader(configPath string, envFiles ...string) Loader {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &loader{
		configPath: configPath,
		envFiles:   envFiles,
	}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}

	explicit := l.configPath
	if explicit == "" {
		explicit = os.Getenv(EnvConfig)
	}

	configPath := explicit
	if configPath == "" {
		configPath = findConfigFile()
	}

	// Start with default configuration
	cfg := Default()

	if configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			// A file named explicitly must load; a discovered one may be skipped.
			if explicit != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		} else {
			cfg = fileCfg
		}
	}

	// Apply environment variable overrides
	cfg = applyEnvVars(cfg)

	// Validate final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
//
// Fields absent from the file keep their default values.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return cfg, nil
}

// Path implements Loader.Path.
func (l *loader) Path() string {
	if l.configPath != "" {
		return l.configPath
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return findConfigFile()
}

// loadEnvFiles loads every existing env file into the process environment.
func (l *loader) loadEnvFiles() error {
	var existing []string
	for _, f := range l.envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat env file %s: %w", f, err)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// SearchPaths returns the config file locations Load tries, in order.
func SearchPaths() []string {
	return []string{
		"./likestats.yaml",
		DefaultConfigPath(),
	}
}

// findConfigFile searches for a config file in standard locations.
//
// Returns empty string if no config file is found.
func findConfigFile() string {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnvVars applies environment variable overrides to the configuration.
//
// Supported environment variables:
//   - LIKESTATS_ACCESS_TOKEN: API access token
//   - LIKESTATS_USER_ID: Analyzed account
//   - LIKESTATS_BASE_URL: API root
//   - LIKESTATS_DB: Path to database file
//   - LIKESTATS_LOG_LEVEL: Log level
func applyEnvVars(cfg *Config) *Config {
	result := *cfg

	if token := os.Getenv(EnvAccessToken); token != "" {
		result.AccessToken = strings.TrimSpace(token)
	}

	if userID := os.Getenv(EnvUserID); userID != "" {
		result.API.UserID = strings.TrimSpace(userID)
	}

	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		result.API.BaseURL = strings.TrimSpace(baseURL)
	}

	if dbPath := os.Getenv(EnvDB); dbPath != "" {
		result.Storage.DBPath = dbPath
	}

	if logLevel := os.Getenv(EnvLogLevel); logLevel != "" {
		result.Logging.Level = strings.ToLower(logLevel)
	}

	return &result
}

// Load is a convenience function that creates a loader and loads configuration.
//
// Equivalent to:
//
//	loader := NewLoader("")
//	return loader.Load()
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile is a convenience function that loads configuration from a file.
//
// Equivalent to:
//
//	loader := NewLoader(path)
//	return loader.Load()
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist.
// File is created with 0600 permissions (read/write for owner only).
// The access token is never written.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
