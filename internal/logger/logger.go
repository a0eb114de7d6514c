// Package logger provides structured logging for kodebuild.
//
// All output goes to stderr by default: the stdout of several subcommands
// is parsed by PlatformIO and must carry nothing but results.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger wraps slog.Logger with kodebuild-specific helpers
type Logger struct {
	*slog.Logger
	config  *Config
	closers []io.Closer
}

// Config holds logger configuration
type Config struct {
	Level  string
	Format string // "json" or "text"
	Color  bool
	// File, when set, receives a copy of every record in append mode.
	File string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a new logger with the given configuration
func New(config *Config) *Logger {
	if config == nil {
		config = &Config{Level: "info", Format: "text"}
	}

	level := ParseLevel(config.Level)
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	handlers := []slog.Handler{newHandler(out, config.Format, level, config.Color)}
	var closers []io.Closer

	if config.File != "" {
		f, err := openLogFile(config.File)
		if err == nil {
			closers = append(closers, f)
			handlers = append(handlers, newHandler(f, config.Format, level, false))
		} else {
			fmt.Fprintf(out, "kodebuild: log file disabled: %v\n", err)
		}
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = NewMultiHandler(handlers...)
	}

	return &Logger{
		Logger:  slog.New(handler),
		config:  config,
		closers: closers,
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return New(&Config{Level: "error", Output: io.Discard})
}

func newHandler(w io.Writer, format string, level slog.Level, color bool) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return NewTextHandler(w, &TextHandlerOptions{Level: level, ColorOutput: color})
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	// Path comes from the project config
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// ParseLevel parses a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Step returns a logger tagged with the build step it reports for
func (l *Logger) Step(name string) *Logger {
	return &Logger{
		Logger:  l.With("step", name),
		config:  l.config,
		closers: l.closers,
	}
}

// WithError returns a logger with an error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger:  l.With("error", err.Error()),
		config:  l.config,
		closers: l.closers,
	}
}

// Infof logs formatted message at info level
func (l *Logger) Infof(format string, args ...any) {
	l.Logger.Info(fmt.Sprintf(format, args...))
}

// Warnf logs formatted message at warn level
func (l *Logger) Warnf(format string, args ...any) {
	l.Logger.Warn(fmt.Sprintf(format, args...))
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MultiHandler fans records out to several handlers
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a handler that writes to multiple handlers
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports whether any handler handles records at the given level
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle handles the Record
//
//nolint:gocritic // slog.Handler interface requires value receiver
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// WithAttrs returns a new Handler with the given attributes added
func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return NewMultiHandler(handlers...)
}

// WithGroup returns a new Handler with the given group name
func (h *MultiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return NewMultiHandler(handlers...)
}
