// Package logger configures the global slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
)

// LogFormat represents the available log output formats
type LogFormat string

const (
	LogFormatPretty LogFormat = "pretty" // Colorized, human-readable (tint)
	LogFormatJSON   LogFormat = "json"   // JSON lines
	LogFormatText   LogFormat = "text"   // key=value pairs
)

// NewHandler builds a handler writing to w in the given format. color only
// affects the pretty format.
func NewHandler(w io.Writer, format LogFormat, level slog.Level, color bool) slog.Handler {
	switch format {
	case LogFormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case LogFormatText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    !color,
		})
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs the global logger described by c. Logs are appended to
// c.LogFile when it is set, without color, and go to stderr otherwise. The
// returned closer releases the log file.
func Setup(c *wiki.Config) (io.Closer, error) {
	format := ParseLogFormat(c.LogFormat)
	level := ParseLogLevel(c.LogLevel)

	if c.LogFile == "" {
		slog.SetDefault(slog.New(NewHandler(os.Stderr, format, level, true)))
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &wiki.ConfigurationError{Setting: "log_file", Value: c.LogFile, Err: errors.WithStack(err)}
	}
	slog.SetDefault(slog.New(NewHandler(f, format, level, false)))
	return f, nil
}

// ParseLogFormat converts a string to LogFormat, defaulting to pretty
func ParseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	case "text":
		return LogFormatText
	default:
		return LogFormatPretty
	}
}

// ParseLogLevel converts a string to slog.Level, defaulting to Info
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
