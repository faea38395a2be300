package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielledeleo/wikigraph/testutil"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), strings.Join(args, " "))
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	config := "db:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "links.db") + "\n" +
		"staging:\n  dir: " + dir + "\n  compression: none\n" +
		"ingest:\n  language: en\n  workers: 2\n" +
		"log_format: text\nlog_level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	dumpPath := filepath.Join(dir, "enwiki.xml")
	require.NoError(t, os.WriteFile(dumpPath, []byte(testutil.Dump(
		testutil.PageBlock("Earth", 1, 101, "'''Earth''' orbits the [[Sun]]."),
		testutil.PageBlock("Sun", 2, 102, "A star."),
	)), 0o644))

	t.Run("parse", func(t *testing.T) {
		out := run(t, "--config", configPath, "parse", "--links", dumpPath)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)

		var page struct {
			wiki.PageRecord
			Links []struct {
				Target string `json:"target"`
			} `json:"links"`
		}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &page))
		assert.Equal(t, "Earth", page.Title)
		assert.Empty(t, page.Body)
		require.Len(t, page.Links, 1)
		assert.Equal(t, "Sun", page.Links[0].Target)
	})

	t.Run("load and query", func(t *testing.T) {
		out := run(t, "--config", configPath, "load", "--clear", dumpPath)
		assert.Contains(t, out, "1 links")

		out = run(t, "--config", configPath, "query", "link", "1", "2")
		var link wiki.LinkRecord
		require.NoError(t, json.Unmarshal([]byte(out), &link))
		assert.Equal(t, "Sun", link.AnchorText)
		assert.Equal(t, wiki.LocationFirstParagraph, link.LocationType)

		out = run(t, "--config", configPath, "query", "count", "--type", "first_paragraph")
		assert.Equal(t, "1", strings.TrimSpace(out))
	})

	t.Run("export", func(t *testing.T) {
		path := filepath.Join(dir, "links.parquet")
		out := run(t, "--config", configPath, "export", path)
		assert.Contains(t, out, "wrote 1 rows")
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	})
}
