package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingSinkReplay(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZstd} {
		t.Run(string(c), func(t *testing.T) {
			sink, err := newStagingSink(t.TempDir(), c)
			require.NoError(t, err)
			defer sink.Remove()

			in := []wiki.LinkRecord{
				{Language: 1, AnchorText: "plain", SourceID: 1, DestID: 2, Location: 3, IsParseable: true, LocationType: wiki.LocationBody},
				{Language: 2, AnchorText: `quote " and, comma`, SourceID: 4, DestID: 5, Location: 6, LocationType: wiki.LocationTemplate},
				{Language: 1, AnchorText: "", SourceID: 7, DestID: 8, Location: 0, IsParseable: true, LocationType: wiki.LocationNone},
				{Language: 1, AnchorText: "crlf\r\nbare\rcr", SourceID: 9, DestID: 10, Location: 1, LocationType: wiki.LocationBody},
				{Language: 1, AnchorText: "nul\x00 and \xff\xfe", SourceID: 11, DestID: 12, Location: 2, LocationType: wiki.LocationBody},
			}
			for _, l := range in {
				require.NoError(t, sink.Append(l))
			}
			require.NoError(t, sink.Close())
			assert.Equal(t, int64(len(in)), sink.Rows())

			var out []wiki.LinkRecord
			require.NoError(t, sink.Replay(func(l wiki.LinkRecord) error {
				out = append(out, l)
				return nil
			}))
			assert.Equal(t, in, out)

			assert.ErrorIs(t, sink.Append(in[0]), errSinkClosed)
		})
	}
}

func TestStagingHeader(t *testing.T) {
	sink, err := newStagingSink(t.TempDir(), CompressionNone)
	require.NoError(t, err)
	defer sink.Remove()
	require.NoError(t, sink.Close())

	raw, err := os.ReadFile(sink.path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(linkColumns, ",")+"\n", string(raw))
}

func TestStagingRejectsForeignHeader(t *testing.T) {
	sink, err := newStagingSink(t.TempDir(), CompressionNone)
	require.NoError(t, err)
	defer sink.Remove()
	require.NoError(t, sink.Close())
	require.NoError(t, os.WriteFile(sink.path, []byte("a,b,c,d,e,f,g\n"), 0o600))

	err = sink.Replay(func(wiki.LinkRecord) error { return nil })
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, c)

	c, err = ParseCompression("none")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, c)

	_, err = ParseCompression("lz4")
	var ce *wiki.ConfigurationError
	assert.ErrorAs(t, err, &ce)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "links.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("links.db"))
	assert.Equal(t, "file:x.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("file:x.db?mode=rwc"))
	assert.Equal(t, "x.db?_pragma=foreign_keys(1)", sqliteDSN("x.db?_pragma=foreign_keys(1)"))

	a, b := sqliteDSN(":memory:"), sqliteDSN("")
	assert.True(t, strings.HasPrefix(a, "file:wikigraph-"), a)
	assert.Contains(t, a, "mode=memory&cache=shared&_pragma=busy_timeout(5000)")
	assert.NotEqual(t, a, b, "memory stores must not share a database")
}
