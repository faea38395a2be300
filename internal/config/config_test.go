package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupConfigWritesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := SetupConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "wikigraph.db", cfg.Store.DSN)
	assert.Equal(t, "zstd", cfg.Staging.Compression)
	assert.Equal(t, "en", cfg.Ingest.Language)
	assert.Equal(t, "0.0.0.0:8080", cfg.Host)

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "driver: sqlite")

	// reading the written file gives the same config back
	again, err := SetupConfig(file)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestSetupConfigFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
db:
  driver: postgres
  dsn: postgres://localhost/wikigraph?sslmode=disable
staging:
  compression: none
ingest:
  language: de
  workers: 3
log_level: debug
log_file: /var/log/wikigraph.log
`), 0o644))

	cfg, err := SetupConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/wikigraph?sslmode=disable", cfg.Store.DSN)
	assert.Equal(t, "none", cfg.Staging.Compression)
	assert.Equal(t, "de", cfg.Ingest.Language)
	assert.Equal(t, 3, cfg.Ingest.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "/var/log/wikigraph.log", cfg.LogFile)
}

func TestSetupConfigEnvOverride(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("WIKIGRAPH_DB_DSN", "/data/links.db")
	t.Setenv("WIKIGRAPH_INGEST_WORKERS", "7")

	cfg, err := SetupConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "/data/links.db", cfg.Store.DSN)
	assert.Equal(t, 7, cfg.Ingest.Workers)
}

func TestSetupConfigRejectsUnknownLanguage(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("ingest:\n  language: klingon\n"), 0o644))

	_, err := SetupConfig(file)
	var ce *wiki.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ingest.language", ce.Setting)
}

func TestSetupConfigMalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("db: [unclosed\n"), 0o644))

	_, err := SetupConfig(file)
	assert.Error(t, err)
}
