// Package main provides the likestats CLI application.
//
// likestats pages through a user's notification feed (likes, comments and
// collections), aggregates it per user and per post, and prints totals,
// leaderboards, percentile distributions, top contributor shares and the
// follower split. Runs can be saved to a local history database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	// Define global flags.
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version information")

	// Parse command.
	flag.Parse()

	// Handle version flag.
	if *showVersion {
		fmt.Printf("likestats %s\n", version)
		return nil
	}

	// Get command.
	args := flag.Args()
	if len(args) == 0 {
		return showUsage()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := args[0]

	switch command {
	case "analyze":
		return runAnalyzeCommand(ctx, *configPath, args[1:])
	case "dump":
		return runDumpCommand(ctx, *configPath, args[1:])
	case "history":
		return runHistoryCommand(*configPath, args[1:])
	case "config":
		return runConfigCommand(*configPath, args[1:])
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runAnalyzeCommand runs the analyze command.
func runAnalyzeCommand(ctx context.Context, configPath string, args []string) error {
	cmd, err := parseAnalyzeFlags(configPath, args, flag.ExitOnError)
	if err != nil {
		return err
	}
	return cmd.Execute(ctx)
}

// parseAnalyzeFlags builds an analyze command from its flags.
func parseAnalyzeFlags(configPath string, args []string, handling flag.ErrorHandling) (*analyzeCommand, error) {
	fs := flag.NewFlagSet("analyze", handling)
	userID := fs.String("user", "", "account whose followers are analyzed")
	token := fs.String("token", "", "API access token (prefer LIKESTATS_ACCESS_TOKEN)")
	input := fs.String("input", "", "read notifications from a dump file instead of the API")
	format := fs.String("format", "", "output format (table, json, simple)")
	topN := fs.Int("top", -1, "rows per leaderboard (0 for all)")
	likes := fs.Int("likes", -1, "rows of the recent likes table (0 to hide)")
	noFollowers := fs.Bool("no-followers", false, "skip the follower analysis")
	prefetch := fs.Bool("prefetch", false, "fetch the next page while the current one is processed")
	save := fs.Bool("save", false, "save the run to history even if recording is disabled")
	noSave := fs.Bool("no-save", false, "do not save the run to history")
	name := fs.String("name", "", "name the saved run")
	compact := fs.Bool("compact", false, "compact output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *save && *noSave {
		return nil, fmt.Errorf("-save and -no-save are mutually exclusive")
	}
	if *name != "" && *noSave {
		return nil, fmt.Errorf("-name requires the run to be saved")
	}

	return &analyzeCommand{
		userID:      *userID,
		token:       *token,
		input:       *input,
		format:      *format,
		topN:        *topN,
		likes:       *likes,
		noFollowers: *noFollowers,
		prefetch:    *prefetch,
		save:        *save,
		noSave:      *noSave,
		name:        *name,
		compact:     *compact,
		configPath:  configPath,
	}, nil
}

// runDumpCommand runs the dump command.
func runDumpCommand(ctx context.Context, configPath string, args []string) error {
	cmd, err := parseDumpFlags(configPath, args, flag.ExitOnError)
	if err != nil {
		return err
	}
	return cmd.Execute(ctx)
}

// parseDumpFlags builds a dump command from its flags.
func parseDumpFlags(configPath string, args []string, handling flag.ErrorHandling) (*dumpCommand, error) {
	fs := flag.NewFlagSet("dump", handling)
	output := fs.String("output", "", "file to write the notifications to")
	token := fs.String("token", "", "API access token (prefer LIKESTATS_ACCESS_TOKEN)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *output == "" {
		return nil, fmt.Errorf("usage: likestats dump -output <file>")
	}

	return &dumpCommand{
		output:     *output,
		token:      *token,
		configPath: configPath,
	}, nil
}

// runHistoryCommand runs the history command.
func runHistoryCommand(configPath string, args []string) error {
	cmd := &historyCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// runConfigCommand runs the config command.
func runConfigCommand(configPath string, args []string) error {
	cmd := &configCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// showUsage displays usage information.
func showUsage() error {
	usage := `likestats - notification statistics for your posts

Usage:
  likestats [flags] <command> [command flags]

Commands:
  analyze     Fetch notifications and display statistics
  dump        Save every notification to a file for offline analysis
  history     Saved runs (list, show, name, delete)
  config      Configuration management (show, path, init)
  help        Show this help message

Global Flags:
  -config     Path to configuration file
  -version    Show version information

Analyze Command Flags:
  -user          Account whose followers are analyzed
  -token         API access token (prefer LIKESTATS_ACCESS_TOKEN)
  -input         Read notifications from a dump file
  -format        Output format (table, json, simple)
  -top           Rows per leaderboard (0 for all)
  -likes         Rows of the recent likes table (0 to hide)
  -no-followers  Skip the follower analysis
  -prefetch      Fetch the next page while the current one is processed
  -save          Save the run even if history recording is disabled
  -no-save       Do not save the run
  -name          Name the saved run
  -compact       Compact output

Dump Command Flags:
  -output     File to write the notifications to
  -token      API access token

Environment:
  LIKESTATS_ACCESS_TOKEN   API access token (also read from ./.env)
  LIKESTATS_USER_ID        Account whose followers are analyzed
  LIKESTATS_BASE_URL       API root
  LIKESTATS_CONFIG         Configuration file
  LIKESTATS_DB             History database file
  LIKESTATS_LOG_LEVEL      Log level

Examples:
  # Analyze your notifications
  likestats analyze -user 4f0c...

  # Analyze without the follower split, as JSON
  likestats analyze -no-followers -format json

  # Save a dump and analyze it later
  likestats dump -output notifications.json
  likestats analyze -input notifications.json -no-followers

  # Name a run and show it again
  likestats analyze -name before-campaign
  likestats history show before-campaign

Version: %s
`

	fmt.Printf(usage, version)
	return nil
}
