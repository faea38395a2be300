package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the link store",
}

// pageLinkOptions reads --parseable and --type. Unset flags leave the
// field unconstrained.
func pageLinkOptions(cmd *cobra.Command) ([]wiki.PageLinkOption, error) {
	var opts []wiki.PageLinkOption
	if cmd.Flags().Changed("parseable") {
		p, _ := cmd.Flags().GetBool("parseable")
		opts = append(opts, wiki.WithParseable(p))
	}
	if cmd.Flags().Changed("type") {
		name, _ := cmd.Flags().GetString("type")
		t, err := wiki.ParseLocationType(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wiki.WithLocationType(t))
	}
	return opts, nil
}

func pageLinksCmd(use string, dir wiki.Direction) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <page-id>",
		Short: "Print the " + dir.String() + " of a page as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := language()
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			opts, err := pageLinkOptions(cmd)
			if err != nil {
				return err
			}

			return withStore(cmd.Context(), func(ctx context.Context, store *storage.LinkStore) error {
				cursor, err := store.GetLinksForPage(ctx, l.ID, id, dir, opts...)
				if err != nil {
					return err
				}
				defer cursor.Close()

				out := bufio.NewWriter(cmd.OutOrStdout())
				defer out.Flush()
				enc := json.NewEncoder(out)
				for link, err := range cursor.All() {
					if err != nil {
						return err
					}
					if err := enc.Encode(link); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("parseable", true, "only links with this parseable flag (all links when unset)")
	cmd.Flags().String("type", "", "only links with this location type")
	return cmd
}

var linkCmd = &cobra.Command{
	Use:   "link <source-id> <dest-id>",
	Short: "Print the link between two pages",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := language()
		if err != nil {
			return err
		}
		src, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		dst, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return err
		}
		return withStore(cmd.Context(), func(ctx context.Context, store *storage.LinkStore) error {
			link, err := store.GetLink(ctx, l.ID, src, dst)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(link)
		})
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the links of a language by parseable flag and location type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := language()
		if err != nil {
			return err
		}
		parseable, _ := cmd.Flags().GetBool("parseable")
		name, _ := cmd.Flags().GetString("type")
		locType, err := wiki.ParseLocationType(name)
		if err != nil {
			return err
		}
		return withStore(cmd.Context(), func(ctx context.Context, store *storage.LinkStore) error {
			n, err := store.GetCount(ctx, l.ID, parseable, locType)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		})
	},
}

func init() {
	countCmd.Flags().Bool("parseable", true, "count links with this parseable flag")
	countCmd.Flags().String("type", "", "location type to count")
	countCmd.MarkFlagRequired("type")

	queryCmd.AddCommand(
		pageLinksCmd("outlinks", wiki.Outlinks),
		pageLinksCmd("inlinks", wiki.Inlinks),
		linkCmd,
		countCmd,
	)
	rootCmd.AddCommand(queryCmd)
}
