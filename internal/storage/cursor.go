package storage

import (
	"iter"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/jmoiron/sqlx"
)

// Cursor streams query results. It holds a database connection until it is
// exhausted, fails or is closed, so callers that stop early must Close it.
//
//	c, err := store.Get(ctx, filter)
//	if err != nil { ... }
//	defer c.Close()
//	for c.Next() {
//		use(c.Link())
//	}
//	if err := c.Err(); err != nil { ... }
type Cursor struct {
	rows   *sqlx.Rows
	cur    wiki.LinkRecord
	err    error
	closed bool
}

func newCursor(rows *sqlx.Rows) *Cursor {
	return &Cursor{rows: rows}
}

func emptyCursor() *Cursor {
	return &Cursor{closed: true}
}

// Next advances to the next link. It returns false when the results are
// exhausted or an error occurred; the cursor is closed in both cases.
func (c *Cursor) Next() bool {
	if c.closed {
		return false
	}
	if !c.rows.Next() {
		c.fail(c.rows.Err())
		return false
	}
	var row linkRow
	if err := c.rows.StructScan(&row); err != nil {
		c.fail(err)
		return false
	}
	rec, err := row.record()
	if err != nil {
		c.fail(err)
		return false
	}
	c.cur = rec
	return true
}

func (c *Cursor) fail(err error) {
	if err != nil && c.err == nil {
		c.err = wiki.NewStorageError("read cursor", err)
	}
	c.Close()
}

// Link returns the current link.
func (c *Cursor) Link() wiki.LinkRecord {
	return c.cur
}

// Err returns the error that stopped iteration, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the connection. It is safe to call more than once.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.rows.Close(); err != nil && c.err == nil {
		c.err = wiki.NewStorageError("close cursor", err)
		return c.err
	}
	return nil
}

// All returns an iterator over the remaining links. Breaking out of the loop
// closes the cursor. An error is yielded once, as the last element.
func (c *Cursor) All() iter.Seq2[wiki.LinkRecord, error] {
	return func(yield func(wiki.LinkRecord, error) bool) {
		defer c.Close()
		for c.Next() {
			if !yield(c.cur, nil) {
				return
			}
		}
		if c.err != nil {
			yield(wiki.LinkRecord{}, c.err)
		}
	}
}

// Collect drains the cursor into a slice.
func (c *Cursor) Collect() ([]wiki.LinkRecord, error) {
	var out []wiki.LinkRecord
	for l, err := range c.All() {
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Count drains the cursor and returns the number of links it produced.
func (c *Cursor) Count() (int64, error) {
	var n int64
	for _, err := range c.All() {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
