// Package logger provides structured logging for the cleaning pipeline.
// It wraps log/slog so every stage reports its counts with the same field
// names (snake_case): run_id, stage, column, keyword, count, changed.
//
// Two console formats are supported:
//   - JSON (default): machine-readable records
//   - Human: one line per record with a level prefix
//
// Output goes to stderr so cleaned data can be streamed on stdout.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

// OutputFormat selects the console handler.
type OutputFormat int

const (
	// FormatJSON is structured JSON output.
	FormatJSON OutputFormat = iota
	// FormatHuman is a readable single-line console format.
	FormatHuman
)

var (
	output io.Writer = os.Stderr
	level            = slog.LevelInfo
	format           = FormatJSON
)

func init() {
	rebuild()
}

func rebuild() {
	switch format {
	case FormatHuman:
		Logger = slog.New(NewHumanHandler(output, &HumanHandlerOptions{Level: level}))
	default:
		Logger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level}))
	}
}

// SetLevel configures the logging level.
func SetLevel(l slog.Level) {
	level = l
	rebuild()
}

// SetFormat configures the console format.
func SetFormat(f OutputFormat) {
	format = f
	rebuild()
}

// SetOutput redirects log output. Tests use it to capture records.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	output = w
	rebuild()
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s (use debug|info|warn|error)", s)
	}
}

// ParseFormat maps json|human to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "human", "text":
		return FormatHuman, nil
	default:
		return FormatJSON, fmt.Errorf("invalid log format: %s (use json|human)", s)
	}
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithRun returns a logger tagged with a pipeline run id.
func WithRun(runID string) *slog.Logger {
	return Logger.With("run_id", runID)
}

// WithStage returns a logger tagged with run id and stage name.
func WithStage(runID, stage string) *slog.Logger {
	return Logger.With("run_id", runID, "stage", stage)
}

// HumanHandlerOptions configures the human-readable handler.
type HumanHandlerOptions struct {
	Level slog.Level
}

// HumanHandler writes "15:04:05 INFO message k=v ..." lines.
type HumanHandler struct {
	opts   HumanHandlerOptions
	writer io.Writer
	attrs  []slog.Attr
}

// NewHumanHandler creates a human-readable handler.
func NewHumanHandler(w io.Writer, opts *HumanHandlerOptions) *HumanHandler {
	if opts == nil {
		opts = &HumanHandlerOptions{Level: slog.LevelInfo}
	}
	return &HumanHandler{opts: *opts, writer: w}
}

func (h *HumanHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.opts.Level
}

func (h *HumanHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(levelPrefix(r.Level))
	sb.WriteString(" ")
	sb.WriteString(r.Message)
	for _, a := range h.attrs {
		sb.WriteString(" ")
		sb.WriteString(formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(" ")
		sb.WriteString(formatAttr(a))
		return true
	})
	sb.WriteString("\n")
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := &HumanHandler{opts: h.opts, writer: h.writer, attrs: make([]slog.Attr, 0, len(h.attrs)+len(attrs))}
	nh.attrs = append(nh.attrs, h.attrs...)
	nh.attrs = append(nh.attrs, attrs...)
	return nh
}

// WithGroup is a no-op; the pipeline never groups attributes.
func (h *HumanHandler) WithGroup(_ string) slog.Handler { return h }

func levelPrefix(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "✗ ERROR"
	case l >= slog.LevelWarn:
		return "⚠ WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func formatAttr(a slog.Attr) string {
	switch v := a.Value.Any().(type) {
	case time.Duration:
		return fmt.Sprintf("%s=%s", a.Key, formatDuration(v))
	case string:
		if strings.ContainsAny(v, " \t") || v == "" {
			return fmt.Sprintf("%s=%q", a.Key, v)
		}
		return fmt.Sprintf("%s=%s", a.Key, v)
	default:
		return fmt.Sprintf("%s=%v", a.Key, v)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
