package storage

import (
	"context"
	"embed"

	"github.com/pkg/errors"
)

//go:embed sql/*.sql
var ddl embed.FS

// DDL resources, executed verbatim. Each script is idempotent.
const (
	schemaScript  = "sql/local_link_schema.sql"
	indexesScript = "sql/local_link_indexes.sql"
	dropScript    = "sql/local_link_drop.sql"
)

// linkColumns is the column order of local_link, shared by the staging log
// header, inserts and selects.
var linkColumns = []string{
	"lang_id",
	"anchor_text",
	"source_id",
	"dest_id",
	"location",
	"is_parseable",
	"location_type",
}

// execScript runs one of the embedded DDL scripts.
func (s *LinkStore) execScript(ctx context.Context, name string) error {
	script, err := ddl.ReadFile(name)
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}
	if _, err := s.db.ExecContext(ctx, string(script)); err != nil {
		return errors.Wrapf(err, "executing %s", name)
	}
	return nil
}

// createSchema creates local_link if it does not exist yet.
func (s *LinkStore) createSchema(ctx context.Context) error {
	return s.execScript(ctx, schemaScript)
}

func (s *LinkStore) dropSchema(ctx context.Context) error {
	return s.execScript(ctx, dropScript)
}

func (s *LinkStore) createIndexes(ctx context.Context) error {
	return s.execScript(ctx, indexesScript)
}
