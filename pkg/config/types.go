// Package config provides configuration management for likestats.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (a .env file in the working directory included)
// 3. Configuration file
// 4. Default values (lowest priority)
//
// The access token is only ever read from the environment or a flag; it is
// never written to a configuration file.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("API: %s\n", cfg.API.BaseURL)
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/0xmhha/likestats/pkg/ingest"
	"github.com/0xmhha/likestats/pkg/stats"
)

// Config represents the complete application configuration.
//
// Invariants:
// - API.BaseURL must be an absolute URL
// - API.PageSize and API.FollowerPageSize must be > 0
// - API.QueueSize must be within 1..4
// - Analysis percentiles must be within 0..100, fractions within (0, 1]
// - Storage.DBPath must be set when history is recorded.
type Config struct {
	// Remote API settings
	API APIConfig `yaml:"api"`

	// Statistics settings
	Analysis AnalysisConfig `yaml:"analysis"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`

	// AccessToken authenticates API requests. Environment or flag only.
	AccessToken string `yaml:"-" json:"-"`
}

// APIConfig contains remote API settings.
type APIConfig struct {
	// Root URL of the API
	BaseURL string `yaml:"base_url"`

	// Account whose notifications and followers are analyzed
	UserID string `yaml:"user_id"`

	// Notifications requested per page
	PageSize int `yaml:"page_size"`

	// Followers requested per page
	FollowerPageSize int `yaml:"follower_page_size"`

	// Upper bound on follower pages, 0 for no limit
	MaxFollowerPages int `yaml:"max_follower_pages"`

	// Per-request timeout
	Timeout time.Duration `yaml:"timeout"`

	// Retries for temporary failures
	MaxRetries int `yaml:"max_retries"`

	// Initial retry backoff
	RetryDelay time.Duration `yaml:"retry_delay"`

	// Fetch the next page while the current one is processed
	Prefetch bool `yaml:"prefetch"`

	// Pages fetched ahead when prefetching
	QueueSize int `yaml:"queue_size"`
}

// AnalysisConfig contains statistics settings.
type AnalysisConfig struct {
	// Percentiles of the like and comment distributions
	Percentiles []float64 `yaml:"percentiles"`

	// Percentiles of the follower like distribution
	FollowerPercentiles []float64 `yaml:"follower_percentiles"`

	// Fractions for the top-N contribution shares
	TopFractions []float64 `yaml:"top_fractions"`

	// Rows shown per leaderboard, 0 for all
	TopN int `yaml:"top_n"`

	// Rows of the recent likes table, 0 to hide it
	RecentLikes int `yaml:"recent_likes"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// Default output format (table, json, simple)
	DefaultFormat string `yaml:"default_format"`

	// Enable colored output
	ColorEnabled bool `yaml:"color_enabled"`

	// Compact JSON and trimmed tables
	Compact bool `yaml:"compact"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to BoltDB database file
	DBPath string `yaml:"db_path"`

	// Save every analyze run to the history database
	RecordHistory bool `yaml:"record_history"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Stats returns the statistics configuration.
func (a AnalysisConfig) Stats() stats.Config {
	return stats.Config{
		Percentiles:         a.Percentiles,
		FollowerPercentiles: a.FollowerPercentiles,
		TopFractions:        a.TopFractions,
	}
}

// Validate checks if the configuration satisfies all invariants.
//
// Thread-safety: This method is read-only and thread-safe.
func (c *Config) Validate() error {
	// Validate API config
	u, err := url.Parse(c.API.BaseURL)
	if c.API.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.API.BaseURL)
	}
	if c.API.PageSize <= 0 {
		return ErrInvalidPageSize
	}
	if c.API.FollowerPageSize <= 0 {
		return ErrInvalidFollowerPageSize
	}
	if c.API.MaxFollowerPages < 0 {
		return ErrInvalidMaxFollowerPages
	}
	if c.API.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.API.MaxRetries < 0 || c.API.RetryDelay < 0 {
		return ErrInvalidRetry
	}
	if c.API.QueueSize < 1 || c.API.QueueSize > ingest.MaxQueueSize {
		return ErrInvalidQueueSize
	}

	// Validate analysis config
	if err := c.Analysis.Stats().Validate(); err != nil {
		return err
	}
	if c.Analysis.TopN < 0 || c.Analysis.RecentLikes < 0 {
		return ErrInvalidRowLimit
	}

	// Validate display config
	validFormats := map[string]bool{
		"table":  true,
		"json":   true,
		"simple": true,
	}
	if !validFormats[c.Display.DefaultFormat] {
		return ErrInvalidDisplayFormat
	}

	// Validate storage config
	if c.Storage.RecordHistory && c.Storage.DBPath == "" {
		return ErrNoDBPath
	}

	// Validate logging config
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	analysis := stats.DefaultConfig()

	return &Config{
		API: APIConfig{
			BaseURL:          "https://api.yodayo.com",
			PageSize:         ingest.DefaultPageSize,
			FollowerPageSize: 100,
			MaxFollowerPages: 50,
			Timeout:          30 * time.Second,
			MaxRetries:       3,
			RetryDelay:       500 * time.Millisecond,
			QueueSize:        ingest.DefaultQueueSize,
		},
		Analysis: AnalysisConfig{
			Percentiles:         analysis.Percentiles,
			FollowerPercentiles: analysis.FollowerPercentiles,
			TopFractions:        analysis.TopFractions,
			TopN:                20,
			RecentLikes:         20,
		},
		Display: DisplayConfig{
			DefaultFormat: "table",
			ColorEnabled:  true,
		},
		Storage: StorageConfig{
			DBPath:        defaultDBPath(),
			RecordHistory: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Output: "stderr",
			Format: "text",
		},
	}
}
