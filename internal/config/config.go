package config

import (
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file used when none is given.
const DefaultFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. WIKIGRAPH_DB_DSN.
const EnvPrefix = "WIKIGRAPH"

// SetupConfig loads the configuration from file, falling back to defaults and
// writing them to file when it does not exist yet. Environment variables
// override both.
func SetupConfig(file string) (*wiki.Config, error) {
	if file == "" {
		file = DefaultFile
	}

	v := viper.New()
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "wikigraph.db")
	v.SetDefault("staging.dir", os.TempDir())
	v.SetDefault("staging.compression", "zstd") // zstd or none
	v.SetDefault("ingest.language", "en")
	v.SetDefault("ingest.workers", 0) // 0 = one per CPU
	v.SetDefault("host", "0.0.0.0:8080")
	v.SetDefault("log_format", "pretty") // pretty, json, or text
	v.SetDefault("log_level", "info")    // debug, info, warn, error
	v.SetDefault("log_file", "")         // empty = stderr

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(file)
	createDefaultConfigFile := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			createDefaultConfigFile = true
		} else {
			return nil, errors.Wrapf(err, "reading %s", file)
		}
	}

	config := &wiki.Config{
		Store: wiki.StoreConfig{
			Driver: v.GetString("db.driver"),
			DSN:    v.GetString("db.dsn"),
		},
		Staging: wiki.StagingConfig{
			Dir:         v.GetString("staging.dir"),
			Compression: v.GetString("staging.compression"),
		},
		Ingest: wiki.IngestConfig{
			Language: v.GetString("ingest.language"),
			Workers:  v.GetInt("ingest.workers"),
		},
		Host:      v.GetString("host"),
		LogFormat: v.GetString("log_format"),
		LogLevel:  v.GetString("log_level"),
		LogFile:   v.GetString("log_file"),
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	if createDefaultConfigFile {
		slog.Info("config not found, writing defaults", "file", file)
		if err := writeConfig(file, config); err != nil {
			return nil, err
		}
	}
	return config, nil
}

func validate(c *wiki.Config) error {
	if _, err := lang.ByCode(c.Ingest.Language); err != nil {
		return &wiki.ConfigurationError{Setting: "ingest.language", Value: c.Ingest.Language, Err: err}
	}
	if c.Ingest.Workers < 0 {
		return &wiki.ConfigurationError{Setting: "ingest.workers", Value: strconv.Itoa(c.Ingest.Workers), Err: errors.New("must not be negative")}
	}
	return nil
}

func writeConfig(file string, c *wiki.Config) error {
	f, err := os.Create(file)
	if err != nil {
		return errors.Wrap(err, "creating config file")
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return enc.Close()
}
