package storage

import (
	"context"
	"database/sql"
	"strings"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Query methods for LinkStore

// linkRow is the scan target for local_link rows.
type linkRow struct {
	LangID       int64  `db:"lang_id"`
	AnchorText   string `db:"anchor_text"`
	SourceID     int64  `db:"source_id"`
	DestID       int64  `db:"dest_id"`
	Location     int64  `db:"location"`
	IsParseable  bool   `db:"is_parseable"`
	LocationType int64  `db:"location_type"`
}

func (r linkRow) record() (wiki.LinkRecord, error) {
	t, err := wiki.LocationTypeFromOrdinal(r.LocationType)
	if err != nil {
		return wiki.LinkRecord{}, err
	}
	return wiki.LinkRecord{
		Language:     lang.ID(r.LangID),
		AnchorText:   r.AnchorText,
		SourceID:     r.SourceID,
		DestID:       r.DestID,
		Location:     r.Location,
		IsParseable:  r.IsParseable,
		LocationType: t,
	}, nil
}

var selectLinks = `SELECT ` + strings.Join(linkColumns, ", ") + ` FROM local_link`

func int64s[T ~int16 | ~int64](vals []T) []int64 {
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = int64(v)
	}
	return out
}

// buildQuery translates a filter into a rebound SELECT. Each constrained
// field becomes one IN clause; the filter must not be empty.
func (s *LinkStore) buildQuery(f wiki.Filter, suffix string) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	in := func(col string, vals any) {
		where = append(where, col+" IN (?)")
		args = append(args, vals)
	}
	if ids, ok := f.Languages(); ok {
		in("lang_id", int64s(ids))
	}
	if ids, ok := f.SourceIDs(); ok {
		in("source_id", ids)
	}
	if ids, ok := f.DestIDs(); ok {
		in("dest_id", ids)
	}
	if types, ok := f.LocationTypes(); ok {
		in("location_type", int64s(types))
	}
	if vals, ok := f.Parseable(); ok {
		in("is_parseable", vals)
	}

	q := selectLinks
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += suffix
	if len(args) == 0 {
		return q, nil, nil
	}
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return "", nil, errors.Wrap(err, "expanding filter")
	}
	return s.db.Rebind(q), args, nil
}

// Get streams every link matching f. A filter with an empty constrained set
// yields an empty cursor without touching the database.
func (s *LinkStore) Get(ctx context.Context, f wiki.Filter) (*Cursor, error) {
	if err := s.checkIdle(); err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return emptyCursor(), nil
	}
	q, args, err := s.buildQuery(f, "")
	if err != nil {
		return nil, wiki.NewStorageError("get", err)
	}
	rows, err := s.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, wiki.NewStorageError("get", err)
	}
	return newCursor(rows), nil
}

// GetLink returns the link from src to dst. When the source page links to the
// destination more than once the earliest occurrence is returned.
func (s *LinkStore) GetLink(ctx context.Context, language lang.ID, src, dst int64) (wiki.LinkRecord, error) {
	if err := s.checkIdle(); err != nil {
		return wiki.LinkRecord{}, err
	}
	f := wiki.NewFilter().WithLanguages(language).WithSourceIDs(src).WithDestIDs(dst)
	q, args, err := s.buildQuery(f, " ORDER BY location LIMIT 1")
	if err != nil {
		return wiki.LinkRecord{}, wiki.NewStorageError("get link", err)
	}

	var row linkRow
	err = s.db.GetContext(ctx, &row, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return wiki.LinkRecord{}, wiki.ErrLinkNotFound
	}
	if err != nil {
		return wiki.LinkRecord{}, wiki.NewStorageError("get link", err)
	}
	rec, err := row.record()
	return rec, wiki.NewStorageError("get link", err)
}

// GetLinksForPage streams the outlinks or inlinks of one page.
func (s *LinkStore) GetLinksForPage(ctx context.Context, language lang.ID, pageID int64, dir wiki.Direction, opts ...wiki.PageLinkOption) (*Cursor, error) {
	return s.Get(ctx, wiki.PageFilter(language, pageID, dir, opts...))
}

// GetCount counts the links of one language with the given parseable flag and
// location type. It streams the matching rows, so it costs O(matches).
func (s *LinkStore) GetCount(ctx context.Context, language lang.ID, isParseable bool, locType wiki.LocationType) (int, error) {
	f := wiki.NewFilter().
		WithLanguages(language).
		WithParseable(isParseable).
		WithLocationTypes(locType)
	c, err := s.Get(ctx, f)
	if err != nil {
		return 0, err
	}
	n, err := c.Count()
	return int(n), err
}
