package main

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/danielledeleo/wikigraph/dump"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <dump>",
	Short: "Print the page records of a dump as JSON lines",
	Long: `Parse every page of a dump (plain, .gz or .bz2) and print one JSON record
per page. Pages that fail to parse are logged and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := language()
		if err != nil {
			return err
		}
		withBody, _ := cmd.Flags().GetBool("body")
		withLinks, _ := cmd.Flags().GetBool("links")

		rc, err := dump.OpenDump(args[0])
		if err != nil {
			return err
		}
		defer rc.Close()

		out := bufio.NewWriter(cmd.OutOrStdout())
		defer out.Flush()
		enc := json.NewEncoder(out)

		type parsed struct {
			wiki.PageRecord
			Links []dump.ExtractedLink `json:"links,omitempty"`
		}

		parser := dump.NewParser(l)
		reader := dump.NewReader(rc)
		for {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			b, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				slog.Warn("stopping at unreadable block", "offset", reader.Offset(), "error", err)
				return nil
			}
			p, err := parser.ParseRange(b.Text, b.Start, b.Stop)
			if err != nil {
				slog.Warn("skipping page", "error", err)
				continue
			}
			rec := parsed{PageRecord: p}
			if withLinks && p.HasBody() {
				rec.Links = dump.ExtractLinks(l, p.Body)
			}
			if !withBody {
				rec.Body = ""
			}
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
	},
}

func init() {
	parseCmd.Flags().Bool("body", false, "include page bodies")
	parseCmd.Flags().Bool("links", false, "include the links extracted from each body")
	rootCmd.AddCommand(parseCmd)
}
