// Package display provides output formatting for notification statistics.
//
// It supports multiple output formats (table, JSON, simple text) and only
// reads what it is given: formatters never modify a snapshot.
package display

import (
	"io"
	"time"

	"github.com/0xmhha/likestats/pkg/aggregator"
	"github.com/0xmhha/likestats/pkg/history"
	"github.com/0xmhha/likestats/pkg/stats"
)

// Format represents an output format.
type Format string

const (
	// FormatTable displays statistics in formatted tables.
	FormatTable Format = "table"

	// FormatJSON displays statistics as JSON.
	FormatJSON Format = "json"

	// FormatSimple displays statistics as plain sentences.
	FormatSimple Format = "simple"
)

// RunInfo describes how a snapshot was produced.
type RunInfo struct {
	ID       string        `json:"id,omitempty"`
	Name     string        `json:"name,omitempty"`
	UserID   string        `json:"user_id,omitempty"`
	Source   string        `json:"source,omitempty"`
	Pages    int           `json:"pages"`
	Records  int           `json:"records"`
	Warnings int           `json:"warnings"`
	Duration time.Duration `json:"duration"`
}

// RunInfoOf extracts the run description of a stored run.
func RunInfoOf(run *history.Run) RunInfo {
	return RunInfo{
		ID:       run.ID,
		Name:     run.Name,
		UserID:   run.UserID,
		Source:   run.Source,
		Pages:    run.Pages,
		Records:  run.Records,
		Warnings: run.Warnings,
		Duration: run.Duration,
	}
}

// Formatter formats and displays run statistics.
type Formatter interface {
	// FormatSnapshot formats the statistics of one run.
	//
	// Parameters:
	//   - w: Output writer
	//   - snap: Statistics to format
	//   - run: Run description shown with the statistics
	//
	// Returns error if formatting fails.
	FormatSnapshot(w io.Writer, snap *stats.Snapshot, run RunInfo) error

	// FormatLikes formats individual likes, in the order given.
	FormatLikes(w io.Writer, likes []aggregator.Like) error

	// FormatRuns formats a list of stored runs.
	FormatRuns(w io.Writer, runs []*history.Run) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatTable.
	Format Format

	// TopN limits every leaderboard to its first rows (0 shows all).
	TopN int

	// Color enables colored headings in table output.
	Color bool

	// Compact enables compact output (less whitespace).
	// Default: false.
	Compact bool
}
