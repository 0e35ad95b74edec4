package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/0xmhha/likestats/pkg/config"
	"github.com/0xmhha/likestats/pkg/display"
	"github.com/0xmhha/likestats/pkg/history"
	"github.com/0xmhha/likestats/pkg/logger"
	"github.com/0xmhha/likestats/pkg/stats"
)

// historyCommand handles saved run subcommands.
type historyCommand struct {
	configPath string
}

// Execute runs the history command.
func (c *historyCommand) Execute(args []string) error {
	if len(args) == 0 {
		return c.showHelp()
	}

	subcommand := args[0]
	subargs := args[1:]

	switch subcommand {
	case "list":
		return c.runList(subargs)
	case "show":
		return c.runShow(subargs)
	case "name":
		return c.runName(subargs)
	case "delete":
		return c.runDelete(subargs)
	case "export":
		return c.runExport(subargs)
	case "help":
		return c.showHelp()
	default:
		return fmt.Errorf("unknown history subcommand: %s", subcommand)
	}
}

// open loads configuration and opens the history database.
func (c *historyCommand) open() (*config.Config, logger.Logger, history.Store, error) {
	cfg, log, err := loadConfig(c.configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := openHistory(cfg, log)
	if err != nil {
		_ = log.Close() //nolint:errcheck // best effort cleanup
		return nil, nil, nil, err
	}

	return cfg, log, store, nil
}

// closeStore closes the store, logging any failure.
func closeStore(store history.Store, log logger.Logger) {
	if err := store.Close(); err != nil {
		log.Error("failed to close history", "error", err)
	}
}

// closeAll closes the store, then the logger it reports to.
func closeAll(store history.Store, log logger.Logger) {
	closeStore(store, log)
	_ = log.Close() //nolint:errcheck // best effort cleanup
}

// runList lists saved runs, newest first.
func (c *historyCommand) runList(args []string) error {
	fs := flag.NewFlagSet("history list", flag.ExitOnError)
	format := fs.String("format", "", "output format (table, json, simple)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, store, err := c.open()
	if err != nil {
		return err
	}
	defer closeAll(store, log)

	if *format != "" {
		cfg.Display.DefaultFormat = *format
	}
	formatter, err := newFormatter(cfg, os.Stdout)
	if err != nil {
		return err
	}

	runs, err := store.List()
	if err != nil {
		return err
	}

	return formatter.FormatRuns(os.Stdout, runs)
}

// runShow displays the statistics of a saved run.
func (c *historyCommand) runShow(args []string) error {
	fs := flag.NewFlagSet("history show", flag.ExitOnError)
	format := fs.String("format", "", "output format (table, json, simple)")
	topN := fs.Int("top", -1, "rows per leaderboard (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: likestats history show <id|name>")
	}

	cfg, log, store, err := c.open()
	if err != nil {
		return err
	}
	defer closeAll(store, log)

	if *format != "" {
		cfg.Display.DefaultFormat = *format
	}
	if *topN >= 0 {
		cfg.Analysis.TopN = *topN
	}
	formatter, err := newFormatter(cfg, os.Stdout)
	if err != nil {
		return err
	}

	run, err := resolveRun(store, fs.Arg(0))
	if err != nil {
		return err
	}

	return formatter.FormatSnapshot(os.Stdout, run.Snapshot, display.RunInfoOf(run))
}

// runName assigns a name to a saved run.
func (c *historyCommand) runName(args []string) error {
	fs := flag.NewFlagSet("history name", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: likestats history name <id|name> <new-name>")
	}

	name := strings.TrimSpace(fs.Arg(1))
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	_, log, store, err := c.open()
	if err != nil {
		return err
	}
	defer closeAll(store, log)

	run, err := resolveRun(store, fs.Arg(0))
	if err != nil {
		return err
	}

	if err := store.SetName(run.ID, name); err != nil {
		if errors.Is(err, history.ErrNameConflict) {
			return fmt.Errorf("name '%s' is already used by another run", name)
		}
		return fmt.Errorf("failed to set name: %w", err)
	}

	printNameUpdateResult(run.ID, run.Name, name)
	return nil
}

// printNameUpdateResult outputs the appropriate message for name updates.
func printNameUpdateResult(id, oldName, newName string) {
	shortID := id[:8]
	switch {
	case oldName == newName:
		fmt.Printf("Run '%s' already has name '%s'\n", shortID, newName)
	case oldName == "":
		fmt.Printf("Set name '%s' for run '%s'\n", newName, shortID)
	default:
		fmt.Printf("Renamed run '%s' from '%s' to '%s'\n", shortID, oldName, newName)
	}
}

// runDelete removes a saved run.
func (c *historyCommand) runDelete(args []string) error {
	fs := flag.NewFlagSet("history delete", flag.ExitOnError)
	force := fs.Bool("force", false, "skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: likestats history delete [-force] <id|name>")
	}

	_, log, store, err := c.open()
	if err != nil {
		return err
	}
	defer closeAll(store, log)

	run, err := resolveRun(store, fs.Arg(0))
	if err != nil {
		return err
	}

	if !*force && !confirm(fmt.Sprintf("Delete run %s?", describeRun(run))) {
		fmt.Println("Delete cancelled.")
		return nil
	}

	if err := store.Delete(run.ID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	fmt.Printf("Deleted run %s\n", describeRun(run))
	return nil
}

// runExport writes the leaderboards of a saved run as CSV.
func (c *historyCommand) runExport(args []string) error {
	fs := flag.NewFlagSet("history export", flag.ExitOnError)
	output := fs.String("output", "", "output file (default: stdout)")
	board := fs.String("board", "likes", "leaderboard (likes, comments, post-comments, collects)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: likestats history export [-board likes] [-output file.csv] <id|name>")
	}

	_, log, store, err := c.open()
	if err != nil {
		return err
	}
	defer closeAll(store, log)

	run, err := resolveRun(store, fs.Arg(0))
	if err != nil {
		return err
	}

	ranks, header, err := selectBoard(run.Snapshot, *board)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output) // nolint:gosec
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Error("failed to close output file", "error", err)
			}
		}()
		w = f
	}

	if err := writeRanksCSV(w, header, ranks); err != nil {
		return err
	}

	if *output != "" {
		fmt.Fprintf(os.Stderr, "Exported %d row(s) to %s\n", len(ranks), *output)
	}
	return nil
}

// selectBoard returns the named leaderboard and its CSV header.
func selectBoard(snap *stats.Snapshot, board string) ([]stats.Rank, []string, error) {
	switch board {
	case "likes":
		return snap.LikesByUser, []string{"user", "likes"}, nil
	case "comments":
		return snap.CommentsByUser, []string{"user", "comments"}, nil
	case "post-comments":
		return snap.CommentsByResource, []string{"post", "comments"}, nil
	case "collects":
		return snap.CollectsByResource, []string{"post", "collected"}, nil
	default:
		return nil, nil, fmt.Errorf("unknown board %q: must be likes, comments, post-comments, or collects", board)
	}
}

// writeRanksCSV writes ranks with a header row.
func writeRanksCSV(w io.Writer, header []string, ranks []stats.Rank) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range ranks {
		if err := cw.Write([]string{r.Key, strconv.Itoa(r.Count)}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// resolveRun finds a run by id or name with a readable error.
func resolveRun(store history.Store, ref string) (*history.Run, error) {
	run, err := store.Resolve(ref)
	if errors.Is(err, history.ErrRunNotFound) {
		return nil, fmt.Errorf("no saved run with id or name '%s'", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// describeRun renders a run reference for messages.
func describeRun(run *history.Run) string {
	if run.Name != "" {
		return fmt.Sprintf("'%s' (%s)", run.Name, run.ID[:8])
	}
	return fmt.Sprintf("'%s'", run.ID[:8])
}

// confirm asks a yes/no question on stdin.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		fmt.Println()
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// showHelp displays help for history command.
func (c *historyCommand) showHelp() error {
	help := `History - Saved analysis runs

Usage:
  likestats history <subcommand> [flags]

Subcommands:
  list      List saved runs, newest first
  show      Display the statistics of a saved run
  name      Assign a name to a saved run
  delete    Delete a saved run
  export    Write a leaderboard of a saved run as CSV

List/Show Flags:
  -format   Output format (table, json, simple)
  -top      Rows per leaderboard (show only)

Delete Flags:
  -force    Skip confirmation prompt

Export Flags:
  -board    Leaderboard (likes, comments, post-comments, collects)
  -output   Output file (default: stdout)

Examples:
  likestats history list
  likestats history show before-campaign
  likestats history name 3f2a9c1e-... before-campaign
  likestats history delete -force before-campaign
  likestats history export -board likes -output likes.csv before-campaign
`
	fmt.Print(help)
	return nil
}
