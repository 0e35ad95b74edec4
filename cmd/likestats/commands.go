package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/0xmhha/likestats/pkg/aggregator"
	"github.com/0xmhha/likestats/pkg/config"
	"github.com/0xmhha/likestats/pkg/display"
	"github.com/0xmhha/likestats/pkg/follower"
	"github.com/0xmhha/likestats/pkg/history"
	"github.com/0xmhha/likestats/pkg/ingest"
	"github.com/0xmhha/likestats/pkg/logger"
	"github.com/0xmhha/likestats/pkg/source"
	"github.com/0xmhha/likestats/pkg/stats"
)

// errNoToken is returned when the API is used without credentials.
var errNoToken = errors.New("no access token: set LIKESTATS_ACCESS_TOKEN, add it to .env, or pass -token")

// loadConfig loads configuration and creates the logger it describes.
func loadConfig(configPath string) (*config.Config, logger.Logger, error) {
	cfg, err := config.NewLoader(configPath).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	return cfg, log, nil
}

// newClient creates an API client from configuration.
func newClient(cfg *config.Config, log logger.Logger) (*source.Client, error) {
	client, err := source.New(cfg.API.BaseURL,
		source.WithToken(cfg.AccessToken),
		source.WithTimeout(cfg.API.Timeout),
		source.WithRetry(cfg.API.MaxRetries, cfg.API.RetryDelay),
		source.WithLogger(log.With("component", "source")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API client: %w", err)
	}
	return client, nil
}

// openHistory opens the run history database.
func openHistory(cfg *config.Config, log logger.Logger) (history.Store, error) {
	store, err := history.New(history.Config{
		DBPath: cfg.Storage.DBPath,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

// useColor reports whether output to w should be colored.
func useColor(cfg *config.Config, w io.Writer) bool {
	if !cfg.Display.ColorEnabled || color.NoColor {
		return false
	}

	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newFormatter creates the formatter configured for output to w.
func newFormatter(cfg *config.Config, w io.Writer) (display.Formatter, error) {
	format, err := display.ParseFormat(cfg.Display.DefaultFormat)
	if err != nil {
		return nil, err
	}

	return display.New(display.Config{
		Format:  format,
		TopN:    cfg.Analysis.TopN,
		Color:   useColor(cfg, w),
		Compact: cfg.Display.Compact,
	}), nil
}

// analyzeCommand fetches notifications and displays their statistics.
type analyzeCommand struct {
	userID      string
	token       string
	input       string
	format      string
	topN        int
	likes       int
	noFollowers bool
	prefetch    bool
	save        bool
	noSave      bool
	name        string
	compact     bool
	configPath  string
}

// Execute runs the analyze command.
func (c *analyzeCommand) Execute(ctx context.Context) error {
	cfg, log, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	defer log.Close() //nolint:errcheck // best effort cleanup

	if err := c.applyOverrides(cfg); err != nil {
		return err
	}

	formatter, err := newFormatter(cfg, os.Stdout)
	if err != nil {
		return err
	}

	if cfg.Storage.RecordHistory && c.name != "" {
		if err := checkNameFree(cfg, log, c.name); err != nil {
			return err
		}
	}

	src, origin, err := c.openSource(cfg, log)
	if err != nil {
		return err
	}

	engine, err := ingest.New(ingest.Config{
		PageSize:  cfg.API.PageSize,
		Prefetch:  cfg.API.Prefetch,
		QueueSize: cfg.API.QueueSize,
	}, src, log)
	if err != nil {
		return fmt.Errorf("failed to initialize ingestion: %w", err)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d malformed notification(s)\n",
			len(result.Warnings))
	}

	followers := c.loadFollowers(ctx, cfg, log)

	snap, err := stats.Summarize(result.State, followers, cfg.Analysis.Stats())
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	run := &history.Run{
		Name:     c.name,
		UserID:   cfg.API.UserID,
		Source:   origin,
		Duration: result.Duration,
		Pages:    result.Pages,
		Records:  result.Records,
		Warnings: len(result.Warnings),
		Snapshot: snap,
	}

	if err := formatter.FormatSnapshot(os.Stdout, snap, display.RunInfoOf(run)); err != nil {
		return fmt.Errorf("failed to display statistics: %w", err)
	}
	if err := c.displayLikes(cfg, formatter, result.State); err != nil {
		return err
	}

	// The report is already written; a failed save must not discard it.
	if cfg.Storage.RecordHistory {
		if err := c.saveRun(cfg, log, run); err != nil {
			fmt.Fprintf(os.Stderr, "Run not saved to history: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Saved run %s\n", describeRun(run))
		}
	}

	return nil
}

// checkNameFree fails when name is already used by a saved run, so a
// conflicting -name is reported before any page is fetched. An unreadable
// history is left for the save step to report.
func checkNameFree(cfg *config.Config, log logger.Logger, name string) error {
	store, err := openHistory(cfg, log)
	if err != nil {
		log.Warn("history unavailable, name not checked", "error", err)
		return nil
	}
	defer closeStore(store, log)

	if _, err := store.GetByName(name); err == nil {
		return fmt.Errorf("name '%s' is already used by another run", name)
	}
	return nil
}

// applyOverrides applies command flags on top of the loaded configuration.
func (c *analyzeCommand) applyOverrides(cfg *config.Config) error {
	if c.userID != "" {
		cfg.API.UserID = c.userID
	}
	if c.token != "" {
		cfg.AccessToken = c.token
	}
	if c.format != "" {
		cfg.Display.DefaultFormat = c.format
	}
	if c.topN >= 0 {
		cfg.Analysis.TopN = c.topN
	}
	if c.likes >= 0 {
		cfg.Analysis.RecentLikes = c.likes
	}
	if c.prefetch {
		cfg.API.Prefetch = true
	}
	if c.compact {
		cfg.Display.Compact = true
	}
	if c.save || c.name != "" {
		cfg.Storage.RecordHistory = true
	}
	if c.noSave {
		cfg.Storage.RecordHistory = false
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// openSource returns the notification source and a description of it.
func (c *analyzeCommand) openSource(cfg *config.Config, log logger.Logger) (ingest.Source, string, error) {
	if c.input != "" {
		fileSrc, err := source.LoadFile(c.input)
		if err != nil {
			return nil, "", err
		}
		log.Debug("loaded dump", "path", c.input, "records", fileSrc.Len())
		return fileSrc, c.input, nil
	}

	if cfg.AccessToken == "" {
		return nil, "", errNoToken
	}

	client, err := newClient(cfg, log)
	if err != nil {
		return nil, "", err
	}
	return client, cfg.API.BaseURL, nil
}

// loadFollowers loads the follower set, or returns nil when the follower
// analysis is skipped or fails.
func (c *analyzeCommand) loadFollowers(ctx context.Context, cfg *config.Config, log logger.Logger) *follower.Set {
	if c.noFollowers {
		return nil
	}
	if cfg.API.UserID == "" {
		log.Info("no user id configured, follower analysis skipped")
		return nil
	}
	if cfg.AccessToken == "" {
		log.Info("no access token, follower analysis skipped")
		return nil
	}

	client, err := newClient(cfg, log)
	if err != nil {
		log.Warn("follower analysis skipped", "error", err)
		return nil
	}

	set, err := follower.Load(ctx, client, cfg.API.UserID, follower.Config{
		PageSize: cfg.API.FollowerPageSize,
		MaxPages: cfg.API.MaxFollowerPages,
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Follower analysis skipped: %v\n", err)
		return nil
	}

	return set
}

// saveRun stores the run in the history database.
func (c *analyzeCommand) saveRun(cfg *config.Config, log logger.Logger, run *history.Run) error {
	store, err := openHistory(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	if err := store.Save(run); err != nil {
		if errors.Is(err, history.ErrNameConflict) {
			return fmt.Errorf("name '%s' is already used by another run", run.Name)
		}
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// displayLikes prints the most recent likes.
//
// JSON output stays a single document, so likes are only listed for the
// other formats.
func (c *analyzeCommand) displayLikes(cfg *config.Config, formatter display.Formatter, state *aggregator.State) error {
	n := cfg.Analysis.RecentLikes
	if n == 0 || cfg.Display.DefaultFormat == string(display.FormatJSON) {
		return nil
	}

	likes := state.Likes()
	if len(likes) > n {
		likes = likes[:n]
	}

	if err := formatter.FormatLikes(os.Stdout, likes); err != nil {
		return fmt.Errorf("failed to display likes: %w", err)
	}
	return nil
}

// dumpCommand saves every notification to a file.
type dumpCommand struct {
	output     string
	token      string
	configPath string
}

// Execute runs the dump command.
func (c *dumpCommand) Execute(ctx context.Context) error {
	cfg, log, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	defer log.Close() //nolint:errcheck // best effort cleanup

	if c.token != "" {
		cfg.AccessToken = c.token
	}
	if cfg.AccessToken == "" {
		return errNoToken
	}

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	start := time.Now()
	records, err := source.Collect(ctx, client, cfg.API.PageSize, log)
	if err != nil {
		return err
	}

	if err := source.SaveDump(c.output, records); err != nil {
		return err
	}

	fmt.Printf("Saved %d notification(s) to %s in %.2f seconds\n",
		len(records), c.output, time.Since(start).Seconds())
	return nil
}
