// Package logger provides structured logging for likestats.
//
// Components receive a Logger at construction time; tests pass Noop().
// Attributes whose key names a credential (token, access_token, cookie,
// authorization, credential) are always written as [REDACTED], so the API
// token cannot reach a log line even when passed by mistake.
//
// Example usage:
//
//	log := logger.New(logger.Config{Level: "info", Output: "likestats.log"})
//	defer log.Close()
//
//	log.Info("run finished", "pages", 3, "records", 1137)
//	log.Warn("skipped malformed record", "offset", 500, "index", 12, "error", err)
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Redacted replaces the value of credential-bearing attributes.
const Redacted = "[REDACTED]"

// Logger provides structured logging with levels and fields.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an informational message with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})

	// With returns a logger that adds keysAndValues to every entry.
	// It shares the output of its parent.
	With(keysAndValues ...interface{}) Logger

	// Close releases a file output. Closing a logger derived with With,
	// or closing twice, does nothing.
	Close() error
}

// Config contains logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string

	// Output is stdout, stderr (default) or a file path opened for appending.
	Output string

	// Format is text (default) or json.
	Format string
}

// slogLogger adapts a slog.Logger to Logger.
type slogLogger struct {
	slogger *slog.Logger
	out     *output
}

// output is a destination owned by a root logger.
type output struct {
	closer io.Closer
	once   sync.Once
	err    error
}

func (o *output) close() error {
	if o == nil || o.closer == nil {
		return nil
	}
	o.once.Do(func() {
		o.err = o.closer.Close()
	})
	return o.err
}

// New creates a logger from cfg.
//
// A file output that cannot be opened falls back to stderr with a warning
// logged on it.
func New(cfg Config) Logger {
	w, closer, err := openOutput(cfg.Output)
	if err != nil {
		l := newSlogLogger(os.Stderr, cfg)
		l.Warn("log output unavailable, using stderr", "output", cfg.Output, "error", err)
		return l
	}

	l := newSlogLogger(w, cfg)
	l.out = &output{closer: closer}
	return l
}

// NewWithWriter creates a logger that writes to w and ignores cfg.Output.
// Close never closes w.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	return newSlogLogger(w, cfg)
}

func newSlogLogger(w io.Writer, cfg Config) *slogLogger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: redact,
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &slogLogger{slogger: slog.New(handler)}
}

// Debug implements Logger.Debug.
func (l *slogLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.slogger.Debug(msg, keysAndValues...)
}

// Info implements Logger.Info.
func (l *slogLogger) Info(msg string, keysAndValues ...interface{}) {
	l.slogger.Info(msg, keysAndValues...)
}

// Warn implements Logger.Warn.
func (l *slogLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.slogger.Warn(msg, keysAndValues...)
}

// Error implements Logger.Error.
func (l *slogLogger) Error(msg string, keysAndValues ...interface{}) {
	l.slogger.Error(msg, keysAndValues...)
}

// With implements Logger.With.
func (l *slogLogger) With(keysAndValues ...interface{}) Logger {
	return &slogLogger{slogger: l.slogger.With(keysAndValues...)}
}

// Close implements Logger.Close.
func (l *slogLogger) Close() error {
	return l.out.close()
}

// sensitiveKeys lists attribute keys whose values are never written.
var sensitiveKeys = map[string]bool{
	"token":         true,
	"access_token":  true,
	"cookie":        true,
	"authorization": true,
	"credential":    true,
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Redacted)
	}
	return a
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseLevel maps a level name to slog.Level; unknown names mean info.
func parseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// openOutput resolves a destination. The closer is nil for the standard
// streams.
func openOutput(dest string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(dest) {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr", "":
		return os.Stderr, nil, nil
	}

	// #nosec G304: output path comes from trusted config
	f, err := os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) // nolint:gosec
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", dest, err)
	}
	return f, f, nil
}

// Default returns an info-level text logger on stderr.
func Default() Logger {
	return New(Config{Level: "info"})
}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return newSlogLogger(io.Discard, Config{Level: "error"})
}
