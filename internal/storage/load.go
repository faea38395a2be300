package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// LoadStats summarizes a completed load session.
type LoadStats struct {
	Rows    int64
	Elapsed time.Duration
}

// BeginLoad opens a load session: the schema is created if missing and a
// fresh staging log is opened. Backends without a bulk importer are rejected
// with a ConfigurationError.
func (s *LinkStore) BeginLoad(ctx context.Context) error {
	if s.dialect.bulk == nil {
		return &wiki.ConfigurationError{Setting: "db.driver", Value: s.dialect.name, Err: ErrBulkImportUnsupported}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateLoading {
		return wiki.ErrLoadInProgress
	}
	if err := s.createSchema(ctx); err != nil {
		return wiki.NewStorageError("begin load", err)
	}
	sink, err := newStagingSink(s.stagingDir, s.compression)
	if err != nil {
		return wiki.NewStorageError("begin load", err)
	}
	s.sink = sink
	s.state = stateLoading

	slog.Info("load session started", "staging", sink.path, "compression", s.compression)
	return nil
}

// Save stages one link record. It is safe to call from many goroutines while
// a session is open.
func (s *LinkStore) Save(l wiki.LinkRecord) error {
	if err := l.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	sink := s.sink
	loading := s.state == stateLoading
	s.mu.RUnlock()

	if !loading || sink == nil {
		return wiki.ErrNoLoadSession
	}
	if err := sink.Append(l); err != nil {
		if errors.Is(err, errSinkClosed) {
			return wiki.ErrNoLoadSession
		}
		return wiki.NewStorageError("save", err)
	}
	return nil
}

// EndLoad closes the session: the staging log is bulk imported, the indexes
// are built and the log is removed. The store returns to idle whether or not
// the import succeeded.
func (s *LinkStore) EndLoad(ctx context.Context) (LoadStats, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateLoading || s.sink == nil {
		return LoadStats{}, wiki.ErrNoLoadSession
	}
	sink := s.sink
	defer func() {
		if err := sink.Remove(); err != nil {
			slog.Warn("could not remove staging file", "path", sink.path, "error", err)
		}
		s.sink = nil
		s.state = stateIdle
	}()

	if err := sink.Close(); err != nil {
		return LoadStats{}, wiki.NewStorageError("end load", err)
	}

	slog.Info("bulk importing staged links", "rows", humanize.Comma(sink.Rows()))
	n, err := s.dialect.bulk(ctx, s.db, sink)
	if err != nil {
		return LoadStats{}, wiki.NewStorageError("bulk import", err)
	}
	if err := s.createIndexes(ctx); err != nil {
		return LoadStats{Rows: n}, wiki.NewStorageError("create indexes", err)
	}

	stats := LoadStats{Rows: n, Elapsed: time.Since(start)}
	slog.Info("load session finished", "rows", humanize.Comma(n), "elapsed", stats.Elapsed.Round(time.Millisecond))
	return stats, nil
}
