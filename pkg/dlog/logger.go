// Package dlog is a thin slog wrapper with a CLI-friendly output format.
// SDK components log through it so commands can silence or redirect
// diagnostics without touching the default slog handler.
package dlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with convenience constructors and Fatal helpers.
type Logger struct {
	*slog.Logger
}

// cliHandler renders records as "<emoji> message key=value, key=value".
// Structured JSON would be noise on a terminal; this stays scannable while
// keeping the key=value attrs intact.
type cliHandler struct {
	level slog.Level
	out   io.Writer
	attrs []slog.Attr
}

func (h *cliHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *cliHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	switch r.Level {
	case slog.LevelDebug:
		b.WriteString("🔍 ")
	case slog.LevelInfo:
		b.WriteString("ℹ️  ")
	case slog.LevelWarn:
		b.WriteString("⚠️  ")
	case slog.LevelError:
		b.WriteString("❌ ")
	}

	b.WriteString(r.Message)

	first := true
	writeAttr := func(a slog.Attr) {
		if first {
			b.WriteString(" ")
			first = false
		} else {
			b.WriteString(", ")
		}
		b.WriteString(a.Key)
		b.WriteString("=")
		b.WriteString(a.Value.String())
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})

	b.WriteString("\n")
	_, err := h.out.Write([]byte(b.String()))
	return err
}

func (h *cliHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &cliHandler{level: h.level, out: h.out, attrs: merged}
}

func (h *cliHandler) WithGroup(name string) slog.Handler {
	// Groups are not used by this codebase.
	return h
}

// NewLogger creates a logger writing to output at the given level.
func NewLogger(level slog.Level, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}
	return &Logger{Logger: slog.New(&cliHandler{level: level, out: output})}
}

// NewDefault creates a logger at INFO level writing to stderr, so command
// output on stdout stays machine-readable.
func NewDefault() *Logger {
	return NewLogger(slog.LevelInfo, os.Stderr)
}

// NewQuiet creates a logger that only emits warnings and errors.
func NewQuiet() *Logger {
	return NewLogger(slog.LevelWarn, os.Stderr)
}

// NewVerbose creates a logger that also emits debug records.
func NewVerbose() *Logger {
	return NewLogger(slog.LevelDebug, os.Stderr)
}

// Fatal logs at ERROR level and exits with code 1.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

// Fatalf formats and logs at ERROR level, then exits with code 1.
func (l *Logger) Fatalf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
