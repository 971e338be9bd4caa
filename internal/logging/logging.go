// Package logging wires log/slog to an optionally-rotated sink. The
// CLI's PersistentPreRun calls Logger once at startup, mirroring the
// teacher program's own root command.
package logging

import (
	"context"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileSink configures a rotating log file (spec.md §4.12). A zero
// value disables rotation; Logger then writes to the given io.Writer
// directly.
type FileSink struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger builds the default slog.Logger: JSON-handled when debug is
// false (machine-consumed), text-handled when true (human-read during
// development), always writing to w. Use LoggerWithSink for a rotating
// file sink.
func Logger(w io.Writer, debug bool, level slog.Level) *slog.Logger {
	return LoggerWithSink(w, debug, level, FileSink{})
}

// LoggerWithSink is Logger with an explicit rotating file sink: it
// writes to sink.Path via lumberjack when sink.Path is set, otherwise
// to w.
func LoggerWithSink(w io.Writer, debug bool, level slog.Level, sink FileSink) *slog.Logger {
	var out io.Writer = w
	if sink.Path != "" {
		out = &lumberjack.Logger{
			Filename:   sink.Path,
			MaxSize:    sink.MaxSizeMB,
			MaxBackups: sink.MaxBackups,
			MaxAge:     sink.MaxAgeDays,
			Compress:   sink.Compress,
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if debug {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(&ctxHandler{Handler: handler})
}

// ctxHandler augments the wrapped handler's records with any
// attributes stashed on the context by AppendCtx, the way the teacher
// program's logging package threads request-scoped fields (camera id,
// frame count) through without plumbing them into every call site.
type ctxHandler struct {
	slog.Handler
}

type ctxKey struct{}

// AppendCtx returns a context carrying additional attrs that every
// subsequent log call made with it will include.
func AppendCtx(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithGroup(name)}
}
