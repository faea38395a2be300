// Package export writes filtered link streams to columnar files.
package export

import (
	"context"
	"io"
	"log/slog"

	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/dustin/go-humanize"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const batchSize = 4096

// Source is the query half of the link store.
type Source interface {
	Get(ctx context.Context, f wiki.Filter) (*storage.Cursor, error)
}

// Row is the parquet layout of a link. The location type is written by name
// so files stay readable without the ordinal table.
type Row struct {
	Language     int32  `parquet:"lang_id"`
	AnchorText   string `parquet:"anchor_text"`
	SourceID     int64  `parquet:"source_id"`
	DestID       int64  `parquet:"dest_id"`
	Location     int64  `parquet:"location"`
	IsParseable  bool   `parquet:"is_parseable"`
	LocationType string `parquet:"location_type,dict"`
}

// NewRow converts a link record.
func NewRow(l wiki.LinkRecord) Row {
	return Row{
		Language:     int32(l.Language),
		AnchorText:   l.AnchorText,
		SourceID:     l.SourceID,
		DestID:       l.DestID,
		Location:     l.Location,
		IsParseable:  l.IsParseable,
		LocationType: l.LocationType.String(),
	}
}

// Parquet streams every link matching f into w as a Snappy-compressed parquet
// file and returns the number of rows written. Reading the store and encoding
// run concurrently.
func Parquet(ctx context.Context, src Source, f wiki.Filter, w io.Writer) (int64, error) {
	cursor, err := src.Get(ctx, f)
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	g, ctx := errgroup.WithContext(ctx)
	batches := make(chan []Row, 4)

	g.Go(func() error {
		defer close(batches)
		batch := make([]Row, 0, batchSize)
		for l, err := range cursor.All() {
			if err != nil {
				return err
			}
			batch = append(batch, NewRow(l))
			if len(batch) < batchSize {
				continue
			}
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
			batch = make([]Row, 0, batchSize)
		}
		if len(batch) > 0 {
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var written int64
	g.Go(func() error {
		writer := parquet.NewGenericWriter[Row](w, parquet.SchemaOf(Row{}), &parquet.WriterConfig{Compression: &parquet.Snappy})
		for batch := range batches {
			n, err := writer.Write(batch)
			written += int64(n)
			if err != nil {
				return errors.Wrap(err, "writing parquet rows")
			}
		}
		return errors.Wrap(writer.Close(), "closing parquet writer")
	})

	if err := g.Wait(); err != nil {
		return written, err
	}
	slog.Info("parquet export finished", "rows", humanize.Comma(written))
	return written, nil
}
