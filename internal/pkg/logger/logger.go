// Package logger builds the process slog.Logger with PII redaction.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Format is "json" (default) or "text" for coloured console output.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
	// KeepPII disables email redaction.
	KeepPII bool
}

// New returns a logger writing JSON lines, or tint-formatted text when
// Format is "text".
func New(o Options) *slog.Logger {
	out := o.Output
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(o.Level)
	var replace func([]string, slog.Attr) slog.Attr
	if !o.KeepPII {
		replace = redactAttr
	}

	if strings.EqualFold(o.Format, "text") {
		noColor := true
		if f, ok := out.(*os.File); ok {
			noColor = !isatty.IsTerminal(f.Fd())
			out = colorable.NewColorable(f)
		}
		return slog.New(tint.NewHandler(out, &tint.Options{
			Level:       level,
			TimeFormat:  "15:04:05.000",
			NoColor:     noColor,
			ReplaceAttr: replace,
		}))
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replace,
	}))
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
