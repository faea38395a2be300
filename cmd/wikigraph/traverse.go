package main

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/danielledeleo/wikigraph/internal/graph"
	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/spf13/cobra"
)

var traverseCmd = &cobra.Command{
	Use:   "traverse <page-id>",
	Short: "Walk the link graph breadth-first from a page",
	Long: `Traverse prints every page reachable from the start page within --depth
hops, one JSON object per page with the depth it was first reached at.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := language()
		if err != nil {
			return err
		}
		start, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		depth, _ := cmd.Flags().GetInt("depth")
		dirName, _ := cmd.Flags().GetString("direction")
		dir, err := wiki.ParseDirection(dirName)
		if err != nil {
			return err
		}
		opts, err := pageLinkOptions(cmd)
		if err != nil {
			return err
		}

		return withStore(cmd.Context(), func(ctx context.Context, store *storage.LinkStore) error {
			res, err := graph.Walk(ctx, store, l.ID, start, dir, depth, opts...)
			if err != nil {
				return err
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()
			enc := json.NewEncoder(out)
			for _, v := range res.Visits {
				if err := enc.Encode(v); err != nil {
					return err
				}
			}
			slog.Info("traversal finished", "start", start, "pages", res.Visited.GetCardinality())
			return nil
		})
	},
}

func init() {
	traverseCmd.Flags().Int("depth", 1, "maximum number of hops")
	traverseCmd.Flags().String("direction", "out", "follow outlinks (out) or inlinks (in)")
	traverseCmd.Flags().Bool("parseable", true, "only follow links with this parseable flag")
	traverseCmd.Flags().String("type", "", "only follow links with this location type")
	rootCmd.AddCommand(traverseCmd)
}
