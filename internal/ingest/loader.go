package ingest

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielledeleo/wikigraph/dump"
	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

const progressEvery = 100_000

// LinkSink is the load-session half of the link store.
type LinkSink interface {
	BeginLoad(ctx context.Context) error
	Save(l wiki.LinkRecord) error
	EndLoad(ctx context.Context) (storage.LoadStats, error)
}

// Loader ingests a dump into a link store in two passes over the file: the
// first builds the title index, the second extracts and stages the links of
// every article inside a single load session.
type Loader struct {
	Store    LinkSink
	Language *lang.Language
	Workers  int // 0 = one per CPU
}

// Stats summarizes an ingestion run.
type Stats struct {
	Pages       int64
	Articles    int64
	Redirects   int64
	ParseErrors int64
	Links       int64
	Unresolved  int64
	Rows        int64
	Elapsed     time.Duration
}

type counters struct {
	pages, articles, redirects, parseErrors, links, unresolved atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Pages:       c.pages.Load(),
		Articles:    c.articles.Load(),
		Redirects:   c.redirects.Load(),
		ParseErrors: c.parseErrors.Load(),
		Links:       c.links.Load(),
		Unresolved:  c.unresolved.Load(),
	}
}

func (l *Loader) workers() int {
	if l.Workers > 0 {
		return l.Workers
	}
	return runtime.NumCPU()
}

// Run ingests the dump at path. Unparsable pages are logged and counted but
// never stop the run; a storage failure does.
func (l *Loader) Run(ctx context.Context, path string) (Stats, error) {
	if l.Store == nil || l.Language == nil {
		return Stats{}, errors.New("loader needs a store and a language")
	}
	start := time.Now()
	parser := dump.NewParser(l.Language)
	index := NewTitleIndex(l.Language)

	slog.Info("indexing titles", "dump", path, "language", l.Language.Code, "workers", l.workers())
	var first counters
	err := l.scan(ctx, path, &first, func(ctx context.Context, b dump.Block) error {
		p, err := parser.ParseRange(b.Text, b.Start, b.Stop)
		if err != nil {
			return err
		}
		index.Add(p)
		return nil
	})
	if err != nil {
		return first.stats(), err
	}
	slog.Info("title index built",
		"titles", humanize.Comma(int64(index.Len())),
		"redirects", humanize.Comma(int64(index.Redirects())))

	if err := l.Store.BeginLoad(ctx); err != nil {
		return first.stats(), err
	}

	var c counters
	scanErr := l.scan(ctx, path, &c, func(ctx context.Context, b dump.Block) error {
		p, err := parser.ParseRange(b.Text, b.Start, b.Stop)
		if err != nil {
			return err
		}
		if p.Namespace != wiki.NamespaceArticle {
			return nil
		}
		if p.IsRedirect || p.HasRedirectTag {
			c.redirects.Add(1)
			return nil
		}
		c.articles.Add(1)
		return l.stage(p, index, &c)
	})

	// the session is closed even after a failed scan so the store is usable again
	loaded, err := l.Store.EndLoad(ctx)
	stats := c.stats()
	stats.Rows = loaded.Rows
	stats.Elapsed = time.Since(start)
	if scanErr != nil {
		return stats, scanErr
	}
	if err != nil {
		return stats, err
	}

	slog.Info("ingestion finished",
		"pages", humanize.Comma(stats.Pages),
		"articles", humanize.Comma(stats.Articles),
		"links", humanize.Comma(stats.Links),
		"unresolved", humanize.Comma(stats.Unresolved),
		"parse_errors", humanize.Comma(stats.ParseErrors),
		"elapsed", stats.Elapsed.Round(time.Second))
	return stats, nil
}

func (l *Loader) stage(p wiki.PageRecord, index *TitleIndex, c *counters) error {
	for _, el := range dump.ExtractLinks(l.Language, p.Body) {
		dest, ok := index.Resolve(el.Target)
		if !ok {
			c.unresolved.Add(1)
			continue
		}
		err := l.Store.Save(wiki.LinkRecord{
			Language:     l.Language.ID,
			AnchorText:   el.AnchorText,
			SourceID:     p.ID,
			DestID:       dest,
			Location:     el.Location,
			IsParseable:  el.IsParseable,
			LocationType: el.LocationType,
		})
		if err != nil {
			return err
		}
		c.links.Add(1)
	}
	return nil
}

// scan reads every page block of the dump and runs handle on it in the
// worker pool. ParseErrors are logged and counted; any other handler error
// cancels the scan and is returned.
func (l *Loader) scan(ctx context.Context, path string, c *counters, handle func(context.Context, dump.Block) error) error {
	rc, err := dump.OpenDump(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		fatalErr error
	)
	onError := func(b dump.Block, err error) {
		var pe *wiki.ParseError
		if errors.As(err, &pe) {
			c.parseErrors.Add(1)
			slog.Warn("skipping unparsable page",
				"field", pe.Field, "start", pe.StartByte, "stop", pe.StopByte, "error", pe.Err)
			return
		}
		once.Do(func() {
			fatalErr = errors.Wrapf(err, "page at bytes %d-%d", b.Start, b.Stop)
			cancel()
		})
	}

	q := New(l.workers(), func(b dump.Block) error {
		n := c.pages.Add(1)
		if n%progressEvery == 0 {
			slog.Info("ingest progress", "pages", humanize.Comma(n))
		}
		return handle(ctx, b)
	}, onError)

	r := dump.NewReader(rc)
	var readErr error
	for {
		b, err := r.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, dump.ErrTruncatedPage) {
			c.parseErrors.Add(1)
			slog.Warn("dump ends inside a page", "offset", r.Offset(), "error", err)
			break
		}
		if err != nil {
			readErr = err
			break
		}
		if err := q.Submit(ctx, b); err != nil {
			readErr = err
			break
		}
	}

	if err := q.Shutdown(context.Background()); err != nil {
		return err
	}
	if fatalErr != nil {
		return fatalErr
	}
	if readErr != nil && ctx.Err() == nil {
		return readErr
	}
	return ctx.Err()
}
