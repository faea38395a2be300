// Package testutil provides test utilities for wikigraph tests.
package testutil

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
)

// English is the language id fixtures use.
var English = lang.MustByCode("en").ID

// SetupTestStore opens a file-backed SQLite link store in a temp directory
// with an empty schema. The store is closed when the test ends.
func SetupTestStore(t *testing.T, opts ...storage.Option) *storage.LinkStore {
	t.Helper()

	dir := t.TempDir()
	opts = append([]storage.Option{storage.WithStagingDir(dir)}, opts...)
	store, err := storage.Open(wiki.StoreConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(dir, "links.db"),
	}, opts...)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("failed to clear test store: %v", err)
	}
	return store
}

// Link builds an English, parseable body link.
func Link(src, dst, location int64, anchor string) wiki.LinkRecord {
	return wiki.LinkRecord{
		Language:     English,
		AnchorText:   anchor,
		SourceID:     src,
		DestID:       dst,
		Location:     location,
		IsParseable:  true,
		LocationType: wiki.LocationBody,
	}
}

// LoadLinks runs one complete load session over links.
func LoadLinks(t *testing.T, store *storage.LinkStore, links ...wiki.LinkRecord) storage.LoadStats {
	t.Helper()

	ctx := context.Background()
	if err := store.BeginLoad(ctx); err != nil {
		t.Fatalf("BeginLoad: %v", err)
	}
	for _, l := range links {
		if err := store.Save(l); err != nil {
			t.Fatalf("Save(%+v): %v", l, err)
		}
	}
	stats, err := store.EndLoad(ctx)
	if err != nil {
		t.Fatalf("EndLoad: %v", err)
	}
	return stats
}

// PageBlock renders a minimal dump page block.
func PageBlock(title string, id, revID int64, text string) string {
	return "<page>\n" +
		"    <title>" + title + "</title>\n" +
		"    <ns>0</ns>\n" +
		"    <id>" + itoa(id) + "</id>\n" +
		"    <revision>\n" +
		"      <id>" + itoa(revID) + "</id>\n" +
		"      <timestamp>2021-03-04T05:06:07Z</timestamp>\n" +
		"      <text bytes=\"" + itoa(int64(len(text))) + "\" xml:space=\"preserve\">" + text + "</text>\n" +
		"    </revision>\n" +
		"  </page>\n"
}

// RedirectBlock renders a dump page block that redirects to target.
func RedirectBlock(title string, id, revID int64, target string) string {
	return "<page>\n" +
		"    <title>" + title + "</title>\n" +
		"    <ns>0</ns>\n" +
		"    <id>" + itoa(id) + "</id>\n" +
		"    <redirect title=\"" + target + "\" />\n" +
		"    <revision>\n" +
		"      <id>" + itoa(revID) + "</id>\n" +
		"      <timestamp>2021-03-04T05:06:07Z</timestamp>\n" +
		"      <text xml:space=\"preserve\">#REDIRECT [[" + target + "]]</text>\n" +
		"    </revision>\n" +
		"  </page>\n"
}

// Dump wraps page blocks in the mediawiki envelope.
func Dump(blocks ...string) string {
	s := "<mediawiki xml:lang=\"en\">\n  <siteinfo>\n    <sitename>Wikipedia</sitename>\n  </siteinfo>\n"
	for _, b := range blocks {
		s += "  " + b
	}
	return s + "</mediawiki>\n"
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
