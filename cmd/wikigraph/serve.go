package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielledeleo/wikigraph/internal/server"
	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the link store over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *storage.LinkStore) error {
			app := server.NewApp(store, cfg)
			srv := &http.Server{
				Addr:              cfg.Host,
				Handler:           app.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					errc <- err
				}
				close(errc)
			}()

			slog.Info("server starting", "url", "http://"+cfg.Host)

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("server shutdown error", "error", err)
			}

			slog.Info("server stopped")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
