package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/danielledeleo/wikigraph/internal/config"
	"github.com/danielledeleo/wikigraph/internal/logger"
	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/spf13/cobra"
)

var (
	configFile string
	langCode   string

	cfg       *wiki.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "wikigraph",
	Short:         "Extract and query the link graph of a Wikipedia dump",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.SetupConfig(configFile); err != nil {
			return err
		}
		logCloser, err = logger.Setup(cfg)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultFile, "config file")
	rootCmd.PersistentFlags().StringVar(&langCode, "lang", "", "language code (defaults to ingest.language)")
}

// language resolves --lang, falling back to the configured ingest language.
func language() (*lang.Language, error) {
	code := langCode
	if code == "" {
		code = cfg.Ingest.Language
	}
	return lang.ByCode(code)
}

// openStore opens the configured link store.
func openStore() (*storage.LinkStore, error) {
	compression, err := storage.ParseCompression(cfg.Staging.Compression)
	if err != nil {
		return nil, err
	}
	return storage.Open(cfg.Store,
		storage.WithStagingDir(cfg.Staging.Dir),
		storage.WithCompression(compression),
	)
}

// withStore runs fn against an open store and closes it afterwards.
func withStore(ctx context.Context, fn func(context.Context, *storage.LinkStore) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()
	return fn(ctx, store)
}
