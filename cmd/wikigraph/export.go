package main

import (
	"context"
	"fmt"
	"os"

	"github.com/danielledeleo/wikigraph/internal/export"
	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <out.parquet>",
	Short: "Write the links of a language to a Parquet file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := language()
		if err != nil {
			return err
		}
		f := wiki.NewFilter().WithLanguages(l.ID)
		if cmd.Flags().Changed("parseable") {
			p, _ := cmd.Flags().GetBool("parseable")
			f = f.WithParseable(p)
		}
		if cmd.Flags().Changed("type") {
			names, _ := cmd.Flags().GetStringSlice("type")
			types := make([]wiki.LocationType, 0, len(names))
			for _, name := range names {
				t, err := wiki.ParseLocationType(name)
				if err != nil {
					return err
				}
				types = append(types, t)
			}
			f = f.WithLocationTypes(types...)
		}

		return withStore(cmd.Context(), func(ctx context.Context, store *storage.LinkStore) (err error) {
			out, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer func() {
				if cerr := out.Close(); err == nil {
					err = cerr
				}
			}()

			n, err := export.Parquet(ctx, store, f, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s rows to %s\n", humanize.Comma(n), args[0])
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().Bool("parseable", true, "only links with this parseable flag (all links when unset)")
	exportCmd.Flags().StringSlice("type", nil, "only links with these location types")
	rootCmd.AddCommand(exportCmd)
}
