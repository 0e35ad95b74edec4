package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/0xmhha/likestats/pkg/stats"
)

// NoData is shown in place of an empty section.
const NoData = "No data"

// New creates a new formatter based on configuration.
//
// Parameters:
//   - cfg: Formatter configuration
//
// Returns a configured Formatter.
func New(cfg Config) Formatter {
	// Set defaults.
	if cfg.Format == "" {
		cfg.Format = FormatTable
	}

	switch cfg.Format {
	case FormatJSON:
		return &jsonFormatter{config: cfg}
	case FormatSimple:
		return &simpleFormatter{config: cfg}
	case FormatTable:
		fallthrough
	default:
		return &tableFormatter{config: cfg}
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatSimple:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be table, json, or simple", s)
	}
}

// formatNumber formats a number with thousand separators.
func formatNumber(n int) string {
	return humanize.Comma(int64(n))
}

// formatValue formats a possibly undefined statistic.
func formatValue(v stats.Value) string {
	if !v.Defined {
		return NoData
	}
	return humanize.CommafWithDigits(v.V, 2)
}

// formatPct formats a percentage with two decimals.
func formatPct(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// formatValuePct formats a possibly undefined percentage.
func formatValuePct(v stats.Value) string {
	if !v.Defined {
		return NoData
	}
	return formatPct(v.V)
}

// formatPercentileLabel renders 50 as "p50" and 2.5 as "p2.5".
func formatPercentileLabel(p float64) string {
	return "p" + formatPercentileNumber(p)
}

// limit returns the first n ranks, or all when n <= 0.
func limit(ranks []stats.Rank, n int) []stats.Rank {
	if n > 0 && len(ranks) > n {
		return ranks[:n]
	}
	return ranks
}

// writeHeader writes a section header.
func writeHeader(w io.Writer, title string, compact, colored bool) error {
	heading := color.New(color.FgCyan, color.Bold)
	if colored {
		heading.EnableColor()
	} else {
		heading.DisableColor()
	}

	if compact {
		_, err := heading.Fprintln(w, title)
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if _, err := heading.Fprintln(w, title); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(title)))
	return err
}

// formatPercentileNumber renders 50 as "50" and 2.5 as "2.5".
func formatPercentileNumber(p float64) string {
	return humanize.Ftoa(p)
}
