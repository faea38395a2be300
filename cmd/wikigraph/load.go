package main

import (
	"context"
	"fmt"
	"time"

	"github.com/danielledeleo/wikigraph/internal/ingest"
	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <dump>",
	Short: "Extract the links of a dump into the link store",
	Long: `Load reads the dump twice: once to index titles and redirects, then again
to extract and stage every article's links, which are bulk imported when the
scan ends. Use --clear to empty the store first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := language()
		if err != nil {
			return err
		}
		clearFirst, _ := cmd.Flags().GetBool("clear")
		workers, _ := cmd.Flags().GetInt("workers")
		if !cmd.Flags().Changed("workers") {
			workers = cfg.Ingest.Workers
		}

		return withStore(cmd.Context(), func(ctx context.Context, store *storage.LinkStore) error {
			if clearFirst {
				if err := store.Clear(ctx); err != nil {
					return err
				}
			}
			loader := &ingest.Loader{Store: store, Language: l, Workers: workers}
			stats, err := loader.Run(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s pages, %s articles, %s redirects, %s parse errors\n",
				humanize.Comma(stats.Pages), humanize.Comma(stats.Articles),
				humanize.Comma(stats.Redirects), humanize.Comma(stats.ParseErrors))
			fmt.Fprintf(cmd.OutOrStdout(), "%s links (%s unresolved), %s rows imported in %s\n",
				humanize.Comma(stats.Links), humanize.Comma(stats.Unresolved),
				humanize.Comma(stats.Rows), stats.Elapsed.Round(time.Millisecond))
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop and recreate the link table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *storage.LinkStore) error {
			return store.Clear(ctx)
		})
	},
}

func init() {
	loadCmd.Flags().Bool("clear", false, "clear the store before loading")
	loadCmd.Flags().Int("workers", 0, "parser workers (defaults to ingest.workers)")
	rootCmd.AddCommand(loadCmd, clearCmd)
}
