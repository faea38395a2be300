package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielledeleo/wikigraph/wiki"
)

func TestParseLogFormat(t *testing.T) {
	tests := map[string]LogFormat{
		"json":   LogFormatJSON,
		"JSON":   LogFormatJSON,
		"text":   LogFormatText,
		"pretty": LogFormatPretty,
		"":       LogFormatPretty,
		"bogus":  LogFormatPretty,
	}
	for in, want := range tests {
		if got := ParseLogFormat(in); got != want {
			t.Errorf("ParseLogFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, LogFormatJSON, slog.LevelWarn, false))

	log.Info("dropped")
	log.Warn("kept", "rows", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["msg"] != "kept" || entry["rows"] != float64(3) {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewHandlerPretty(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, LogFormatPretty, slog.LevelInfo, false)).Info("hello", "lang", "en")
	if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "en") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewHandlerPrettyColor(t *testing.T) {
	var plain, colored bytes.Buffer
	slog.New(NewHandler(&plain, LogFormatPretty, slog.LevelInfo, false)).Error("failed", "err", "x")
	slog.New(NewHandler(&colored, LogFormatPretty, slog.LevelInfo, true)).Error("failed", "err", "x")
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("uncolored output has escape codes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escape codes: %q", colored.String())
	}
}

func TestSetupLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	file := filepath.Join(t.TempDir(), "wikigraph.log")
	closer, err := Setup(&wiki.Config{LogFile: file, LogFormat: "json", LogLevel: "info"})
	if err != nil {
		t.Fatal(err)
	}
	slog.Info("load session started", "rows", 7)
	slog.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"msg":"load session started"`) || strings.Contains(string(raw), "hidden") {
		t.Errorf("unexpected log file contents %q", raw)
	}
}

func TestSetupLogFileUnwritable(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, err := Setup(&wiki.Config{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")})
	var ce *wiki.ConfigurationError
	if !errors.As(err, &ce) || ce.Setting != "log_file" {
		t.Errorf("Setup() = %v, want a log_file ConfigurationError", err)
	}
}
