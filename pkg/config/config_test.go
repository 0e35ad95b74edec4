package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/0xmhha/likestats/pkg/stats"
)

// isolate points HOME at an empty directory and clears likestats variables.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{EnvConfig, EnvAccessToken, EnvUserID, EnvBaseURL, EnvDB, EnvLogLevel} {
		t.Setenv(env, "")
		if err := os.Unsetenv(env); err != nil {
			t.Fatalf("Unsetenv(%s) error = %v", env, err)
		}
	}
	return home
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.API.PageSize != 500 {
		t.Errorf("API.PageSize = %d, want 500", cfg.API.PageSize)
	}

	if cfg.API.QueueSize != 1 {
		t.Errorf("API.QueueSize = %d, want 1", cfg.API.QueueSize)
	}

	if len(cfg.Analysis.Percentiles) != 10 {
		t.Errorf("Analysis.Percentiles has %d entries, want 10", len(cfg.Analysis.Percentiles))
	}

	if cfg.Display.DefaultFormat != "table" {
		t.Errorf("Display.DefaultFormat = %q, want table", cfg.Display.DefaultFormat)
	}

	if cfg.Storage.DBPath == "" {
		t.Error("DBPath not set")
	}

	if cfg.AccessToken != "" {
		t.Error("AccessToken must not have a default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid default config", func(*Config) {}, nil},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, ErrInvalidBaseURL},
		{"relative base url", func(c *Config) { c.API.BaseURL = "api.example.com" }, ErrInvalidBaseURL},
		{"zero page size", func(c *Config) { c.API.PageSize = 0 }, ErrInvalidPageSize},
		{"zero follower page size", func(c *Config) { c.API.FollowerPageSize = 0 }, ErrInvalidFollowerPageSize},
		{"negative follower pages", func(c *Config) { c.API.MaxFollowerPages = -1 }, ErrInvalidMaxFollowerPages},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, ErrInvalidTimeout},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }, ErrInvalidRetry},
		{"queue too deep", func(c *Config) { c.API.QueueSize = 5 }, ErrInvalidQueueSize},
		{"queue zero", func(c *Config) { c.API.QueueSize = 0 }, ErrInvalidQueueSize},
		{"percentile out of range", func(c *Config) { c.Analysis.Percentiles = []float64{150} }, stats.ErrInvalidPercentile},
		{"fraction out of range", func(c *Config) { c.Analysis.TopFractions = []float64{1.5} }, stats.ErrInvalidFraction},
		{"negative top n", func(c *Config) { c.Analysis.TopN = -1 }, ErrInvalidRowLimit},
		{"unknown display format", func(c *Config) { c.Display.DefaultFormat = "live" }, ErrInvalidDisplayFormat},
		{"history without db", func(c *Config) { c.Storage.DBPath = "" }, ErrNoDBPath},
		{"no history no db", func(c *Config) { c.Storage.DBPath = ""; c.Storage.RecordHistory = false }, nil},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile_PartialOverride(t *testing.T) {
	isolate(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  user_id: "me-123"
  page_size: 250
  timeout: 10s
analysis:
  top_fractions: [0.2]
display:
  default_format: json
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.API.UserID != "me-123" {
		t.Errorf("API.UserID = %q, want me-123", cfg.API.UserID)
	}
	if cfg.API.PageSize != 250 {
		t.Errorf("API.PageSize = %d, want 250", cfg.API.PageSize)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if len(cfg.Analysis.TopFractions) != 1 || cfg.Analysis.TopFractions[0] != 0.2 {
		t.Errorf("Analysis.TopFractions = %v, want [0.2]", cfg.Analysis.TopFractions)
	}
	if cfg.Display.DefaultFormat != "json" {
		t.Errorf("Display.DefaultFormat = %q, want json", cfg.Display.DefaultFormat)
	}

	// Fields absent from the file keep their defaults.
	if cfg.API.FollowerPageSize != 100 {
		t.Errorf("API.FollowerPageSize = %d, want default 100", cfg.API.FollowerPageSize)
	}
	if !cfg.Display.ColorEnabled {
		t.Error("Display.ColorEnabled lost its default")
	}
	if !cfg.Storage.RecordHistory {
		t.Error("Storage.RecordHistory lost its default")
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing file error = %v, want ErrConfigNotFound", err)
	}

	badYAML := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badYAML, []byte("api: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err = LoadFromFile(badYAML)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Errorf("bad yaml error = %v, want ErrInvalidYAML", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("api:\n  page_size: -5\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err = LoadFromFile(invalid)
	if !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("invalid config error = %v, want ErrInvalidPageSize", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader("", filepath.Join(t.TempDir(), "none.env")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.PageSize != Default().API.PageSize {
		t.Errorf("API.PageSize = %d, want default", cfg.API.PageSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)

	t.Setenv(EnvAccessToken, " tok-env ")
	t.Setenv(EnvUserID, "user-env")
	t.Setenv(EnvBaseURL, "http://localhost:8080")
	t.Setenv(EnvDB, "/tmp/likestats-test.db")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := NewLoader("", filepath.Join(t.TempDir(), "none.env")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AccessToken != "tok-env" {
		t.Errorf("AccessToken = %q, want tok-env", cfg.AccessToken)
	}
	if cfg.API.UserID != "user-env" {
		t.Errorf("API.UserID = %q, want user-env", cfg.API.UserID)
	}
	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Storage.DBPath != "/tmp/likestats-test.db" {
		t.Errorf("Storage.DBPath = %q", cfg.Storage.DBPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("LIKESTATS_ACCESS_TOKEN=from-dotenv\nLIKESTATS_USER_ID=dotenv-user\n"), 0600); err != nil {
		t.Fatal(err)
	}

	// Variables already in the environment win over the file.
	t.Setenv(EnvUserID, "process-user")

	cfg, err := NewLoader("", envFile).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AccessToken != "from-dotenv" {
		t.Errorf("AccessToken = %q, want from-dotenv", cfg.AccessToken)
	}
	if cfg.API.UserID != "process-user" {
		t.Errorf("API.UserID = %q, want process-user", cfg.API.UserID)
	}
}

func TestLoad_ConfigEnvVar(t *testing.T) {
	isolate(t)

	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(configPath, []byte("api:\n  follower_page_size: 42\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, configPath)

	l := NewLoader("", filepath.Join(t.TempDir(), "none.env"))
	if l.Path() != configPath {
		t.Errorf("Path() = %q, want %q", l.Path(), configPath)
	}

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.FollowerPageSize != 42 {
		t.Errorf("API.FollowerPageSize = %d, want 42", cfg.API.FollowerPageSize)
	}

	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "gone.yaml"))
	if _, err := l.Load(); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load() with missing explicit file error = %v, want ErrConfigNotFound", err)
	}
}

func TestSave(t *testing.T) {
	isolate(t)

	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.API.UserID = "me-123"
	cfg.AccessToken = "super-secret"

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(configPath) // nolint:gosec
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}
	if strings.Contains(string(data), "super-secret") {
		t.Error("Save() wrote the access token")
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.API.UserID != "me-123" {
		t.Errorf("API.UserID = %q, want me-123", loaded.API.UserID)
	}

	bad := Default()
	bad.API.PageSize = 0
	if err := Save(bad, configPath); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("Save(invalid) error = %v, want ErrInvalidPageSize", err)
	}
}

func TestSearchPaths(t *testing.T) {
	home := isolate(t)

	paths := SearchPaths()
	if len(paths) != 2 {
		t.Fatalf("SearchPaths() = %v, want 2 entries", paths)
	}
	if paths[0] != "./likestats.yaml" {
		t.Errorf("SearchPaths()[0] = %q, want ./likestats.yaml", paths[0])
	}
	if want := filepath.Join(home, ".config", "likestats", "config.yaml"); paths[1] != want {
		t.Errorf("SearchPaths()[1] = %q, want %q", paths[1], want)
	}
}
