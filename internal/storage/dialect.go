package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// ErrBulkImportUnsupported is wrapped by the ConfigurationError BeginLoad
// returns for backends without a staged bulk importer.
var ErrBulkImportUnsupported = errors.New("backend does not support staged bulk import")

// bulkImporter loads a closed staging log into local_link in one operation and
// returns the number of rows imported.
type bulkImporter func(ctx context.Context, db *sqlx.DB, sink *stagingSink) (int64, error)

type dialect struct {
	name string
	bulk bulkImporter
}

func dialectFor(driverName string) dialect {
	switch driverName {
	case "sqlite", "sqlite3":
		return dialect{name: "sqlite", bulk: importSQLite}
	case "postgres":
		return dialect{name: "postgres", bulk: importPostgres}
	default:
		return dialect{name: driverName}
	}
}

func linkArgs(l wiki.LinkRecord) []any {
	return []any{
		int64(l.Language),
		l.AnchorText,
		l.SourceID,
		l.DestID,
		l.Location,
		l.IsParseable,
		int64(l.LocationType),
	}
}

var insertLinkSQL = fmt.Sprintf(`INSERT INTO local_link (%s) VALUES (%s)`,
	strings.Join(linkColumns, ", "),
	strings.TrimSuffix(strings.Repeat("?, ", len(linkColumns)), ", "))

// importSQLite replays the log through one prepared statement inside a single
// transaction. SQLite is embedded, so this is one bulk write with no per-row
// round trip.
func importSQLite(ctx context.Context, db *sqlx.DB, sink *stagingSink) (n int64, err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PreparexContext(ctx, insertLinkSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	err = sink.Replay(func(l wiki.LinkRecord) error {
		if _, err := stmt.ExecContext(ctx, linkArgs(l)...); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, err
	}
	return n, tx.Commit()
}

// importPostgres streams the log through COPY FROM STDIN.
func importPostgres(ctx context.Context, db *sqlx.DB, sink *stagingSink) (n int64, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("local_link", linkColumns...))
	if err != nil {
		return 0, err
	}

	err = sink.Replay(func(l wiki.LinkRecord) error {
		if _, err := stmt.ExecContext(ctx, linkArgs(l)...); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		stmt.Close()
		return n, err
	}
	if _, err = stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return n, err
	}
	if err = stmt.Close(); err != nil {
		return n, err
	}
	return n, tx.Commit()
}
