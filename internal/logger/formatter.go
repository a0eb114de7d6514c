package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Prefix starts every text line so kodebuild output stands out in the
// PlatformIO build log.
const Prefix = "[kodebuild]"

// TextHandler is a compact single-line formatter for slog
type TextHandler struct {
	opts   *TextHandlerOptions
	writer io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	group  string
}

// TextHandlerOptions are options for the TextHandler
type TextHandlerOptions struct {
	Level       slog.Level
	ColorOutput bool
	// TimeFormat adds a timestamp when non-empty.
	TimeFormat string
}

// NewTextHandler creates a new text handler
func NewTextHandler(w io.Writer, opts *TextHandlerOptions) *TextHandler {
	if opts == nil {
		opts = &TextHandlerOptions{Level: slog.LevelInfo}
	}
	return &TextHandler{
		opts:   opts,
		writer: w,
		mu:     &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level
func (h *TextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle formats and writes the log record
//
//nolint:gocritic // slog.Handler interface requires value receiver
func (h *TextHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString(Prefix)
	sb.WriteString(" ")

	if h.opts.TimeFormat != "" && !r.Time.IsZero() {
		sb.WriteString(r.Time.Format(h.opts.TimeFormat))
		sb.WriteString(" ")
	}

	if h.opts.ColorOutput {
		sb.WriteString(levelColor(r.Level))
	}
	sb.WriteString(formatLevel(r.Level))
	if h.opts.ColorOutput {
		sb.WriteString("\033[0m")
	}
	sb.WriteString(" ")
	sb.WriteString(r.Message)

	for _, attr := range h.attrs {
		sb.WriteString(" ")
		h.writeAttr(&sb, attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(" ")
		h.writeAttr(&sb, a)
		return true
	})
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *TextHandler) writeAttr(sb *strings.Builder, attr slog.Attr) {
	if h.group != "" {
		sb.WriteString(h.group)
		sb.WriteString(".")
	}
	formatAttr(sb, attr)
}

// WithAttrs returns a new Handler with the given attributes added
func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TextHandler{
		opts:   h.opts,
		writer: h.writer,
		mu:     h.mu,
		attrs:  merged,
		group:  h.group,
	}
}

// WithGroup returns a new Handler with the given group name
func (h *TextHandler) WithGroup(name string) slog.Handler {
	return &TextHandler{
		opts:   h.opts,
		writer: h.writer,
		mu:     h.mu,
		attrs:  h.attrs,
		group:  name,
	}
}

func formatLevel(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO "
	case slog.LevelWarn:
		return "WARN "
	case slog.LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("%-5s", level.String())
	}
}

func levelColor(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "\033[36m"
	case slog.LevelInfo:
		return "\033[32m"
	case slog.LevelWarn:
		return "\033[33m"
	case slog.LevelError:
		return "\033[31m"
	default:
		return "\033[0m"
	}
}

func formatAttr(sb *strings.Builder, attr slog.Attr) {
	sb.WriteString(attr.Key)
	sb.WriteString("=")
	formatValue(sb, attr.Value)
}

func formatValue(sb *strings.Builder, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\r\"") {
			fmt.Fprintf(sb, "%q", s)
		} else {
			sb.WriteString(s)
		}
	case slog.KindTime:
		sb.WriteString(v.Time().Format(time.RFC3339))
	case slog.KindGroup:
		sb.WriteString("{")
		for i, attr := range v.Group() {
			if i > 0 {
				sb.WriteString(" ")
			}
			formatAttr(sb, attr)
		}
		sb.WriteString("}")
	default:
		fmt.Fprint(sb, v.Any())
	}
}
