// Package storage persists the link graph.
//
// LinkStore loads links through staged bulk-load sessions and serves them
// through filtered, streaming queries. Methods are defined in separate files:
//   - load.go: load sessions and bulk importers
//   - link_repo.go: queries
//   - cursor.go: streaming results
//   - staging.go: the staging log
//   - schema.go: embedded DDL
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateLoading
)

// Option configures a LinkStore.
type Option func(*LinkStore)

// WithStagingDir sets the directory staging logs are created in. The default
// is the OS temp directory.
func WithStagingDir(dir string) Option {
	return func(s *LinkStore) { s.stagingDir = dir }
}

// WithCompression sets the staging log compression.
func WithCompression(c Compression) Option {
	return func(s *LinkStore) { s.compression = c }
}

// LinkStore is the link graph store.
//
// Loading follows Idle -BeginLoad-> Loading -EndLoad-> Idle. Save may be
// called from many goroutines during a session; BeginLoad, EndLoad and Clear
// must be serialized by the caller and never overlap queries.
type LinkStore struct {
	db          *sqlx.DB
	dialect     dialect
	stagingDir  string
	compression Compression

	mu    sync.RWMutex
	state sessionState
	sink  *stagingSink
}

// New wraps an open database. The dialect is chosen from the driver name.
func New(db *sqlx.DB, opts ...Option) *LinkStore {
	s := &LinkStore{
		db:          db,
		dialect:     dialectFor(db.DriverName()),
		compression: CompressionZstd,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the database described by cfg.
func Open(cfg wiki.StoreConfig, opts ...Option) (*LinkStore, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = "sqlite"
	}
	dsn := cfg.DSN
	if driver == "sqlite" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, &wiki.ConfigurationError{Setting: "db.driver", Value: cfg.Driver, Err: err}
	}
	if driver == "sqlite" && isMemoryDSN(cfg.DSN) {
		// the database lives as long as one connection to it does
		db.SetConnMaxIdleTime(0)
		db.SetConnMaxLifetime(0)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wiki.NewStorageError("connect", err)
	}

	slog.Info("link store opened", "driver", driver, "bulk_import", dialectFor(driver).bulk != nil)
	return New(db, opts...), nil
}

var memoryStores atomic.Int64

func isMemoryDSN(dsn string) bool {
	return dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// memoryDSN names a private in-memory database with a shared cache, so every
// connection of the pool sees the same data and cursors can be open at once.
func memoryDSN() string {
	return fmt.Sprintf("file:wikigraph-%d?mode=memory&cache=shared", memoryStores.Add(1))
}

// sqliteDSN adds the pragmas every connection needs unless the DSN sets its
// own. Plain :memory: becomes a shared-cache memory database.
func sqliteDSN(dsn string) string {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") {
		dsn = memoryDSN()
	}
	if strings.Contains(dsn, "_pragma") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// DB returns the underlying database handle.
func (s *LinkStore) DB() *sqlx.DB {
	return s.db
}

// Close discards any open load session and closes the database.
func (s *LinkStore) Close() error {
	s.mu.Lock()
	if s.sink != nil {
		s.sink.discard()
		s.sink = nil
	}
	s.state = stateIdle
	s.mu.Unlock()
	return s.db.Close()
}

// Clear drops and recreates the schema, leaving an empty store.
func (s *LinkStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateLoading {
		return wiki.ErrLoadInProgress
	}
	if err := s.dropSchema(ctx); err != nil {
		return wiki.NewStorageError("clear", err)
	}
	if err := s.createSchema(ctx); err != nil {
		return wiki.NewStorageError("clear", err)
	}
	slog.Info("link store cleared")
	return nil
}

// checkIdle guards the query surface.
func (s *LinkStore) checkIdle() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == stateLoading {
		return errors.WithStack(wiki.ErrLoadInProgress)
	}
	return nil
}
