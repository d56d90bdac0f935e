// Package logging configures the process logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Verbosity is the user-facing log level.
type Verbosity string

const (
	Error   Verbosity = "error"
	Warning Verbosity = "warning"
	Info    Verbosity = "info"
	Debug   Verbosity = "debug"
	Trace   Verbosity = "trace"
)

// LevelTrace is below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// ParseVerbosity validates a verbosity name.
func ParseVerbosity(raw string) (Verbosity, error) {
	switch v := Verbosity(strings.ToLower(raw)); v {
	case Error, Warning, Info, Debug, Trace:
		return v, nil
	case "warn":
		return Warning, nil
	}
	return "", fmt.Errorf("invalid verbosity %q (expected error|warning|info|debug|trace)", raw)
}

// Level returns the minimum slog level enabled at v.
func (v Verbosity) Level() slog.Level {
	switch v {
	case Error:
		return slog.LevelError
	case Warning:
		return slog.LevelWarn
	case Debug:
		return slog.LevelDebug
	case Trace:
		return LevelTrace
	}
	return slog.LevelInfo
}

// New returns a logger writing INFO and below to stdout and WARN and above
// to stderr.
func New(v Verbosity, stdout, stderr io.Writer) *slog.Logger {
	level := v.Level()
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format("15:04:05.000"))
			}
			if len(groups) == 0 && a.Key == slog.LevelKey && a.Value.Any() == LevelTrace {
				return slog.String(slog.LevelKey, "TRACE")
			}
			return a
		},
	}
	return slog.New(&splitHandler{
		level: level,
		out:   slog.NewTextHandler(stdout, opts),
		err:   slog.NewTextHandler(stderr, opts),
	})
}

// splitHandler routes records by level: warnings and errors go to stderr
// only, everything else to stdout.
type splitHandler struct {
	level slog.Level
	out   slog.Handler
	err   slog.Handler
}

func (h *splitHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *splitHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		return h.err.Handle(ctx, r)
	}
	return h.out.Handle(ctx, r)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{level: h.level, out: h.out.WithAttrs(attrs), err: h.err.WithAttrs(attrs)}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{level: h.level, out: h.out.WithGroup(name), err: h.err.WithGroup(name)}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Hyperlink wraps path in an OSC 8 terminal hyperlink.
func Hyperlink(path string) string {
	url := "file://" + strings.ReplaceAll(path, `\`, "/")
	return "\x1b]8;;" + url + "\x1b\\" + path + "\x1b]8;;\x1b\\"
}
