// Package graph traverses the link graph.
package graph

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/pkg/errors"
)

// Source is the per-page query of the link store.
type Source interface {
	GetLinksForPage(ctx context.Context, language lang.ID, pageID int64, dir wiki.Direction, opts ...wiki.PageLinkOption) (*storage.Cursor, error)
}

// Visit is a page reached by a walk and its distance from the start page.
type Visit struct {
	PageID int64 `json:"page_id"`
	Depth  int   `json:"depth"`
}

// Result holds the pages of a walk in breadth-first order.
type Result struct {
	Visits  []Visit
	Visited *roaring64.Bitmap
}

// Walk visits every page reachable from start within maxDepth hops, following
// outlinks or inlinks. Each page is visited once, at its smallest depth. opts
// narrow the links that are followed.
func Walk(ctx context.Context, src Source, language lang.ID, start int64, dir wiki.Direction, maxDepth int, opts ...wiki.PageLinkOption) (Result, error) {
	if start <= 0 {
		return Result{}, errors.Errorf("invalid start page %d", start)
	}
	if maxDepth < 0 {
		return Result{}, errors.Errorf("invalid depth %d", maxDepth)
	}

	visited := roaring64.New()
	visited.Add(uint64(start))
	res := Result{Visits: []Visit{{PageID: start}}, Visited: visited}

	frontier := []int64{start}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []int64
		for _, page := range frontier {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			c, err := src.GetLinksForPage(ctx, language, page, dir, opts...)
			if err != nil {
				return res, err
			}
			for l, err := range c.All() {
				if err != nil {
					return res, err
				}
				id := l.DestID
				if dir == wiki.Inlinks {
					id = l.SourceID
				}
				if visited.Contains(uint64(id)) {
					continue
				}
				visited.Add(uint64(id))
				res.Visits = append(res.Visits, Visit{PageID: id, Depth: depth})
				next = append(next, id)
			}
		}
		frontier = next
	}
	return res, nil
}
