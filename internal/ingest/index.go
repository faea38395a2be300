package ingest

import (
	"sync"

	"github.com/danielledeleo/wikigraph/dump"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
)

// TitleIndex maps normalized article titles to page ids so that link targets
// can be resolved. It is safe for concurrent use.
type TitleIndex struct {
	lang *lang.Language

	mu        sync.RWMutex
	ids       map[string]int64
	redirects map[string]string // normalized redirect title -> normalized target
}

// NewTitleIndex returns an empty index for one language.
func NewTitleIndex(l *lang.Language) *TitleIndex {
	return &TitleIndex{
		lang:      l,
		ids:       make(map[string]int64),
		redirects: make(map[string]string),
	}
}

// Add records an article page. Pages outside the article namespace are
// ignored. A redirect's target comes from the <redirect/> tag when present,
// otherwise from the body.
func (ix *TitleIndex) Add(p wiki.PageRecord) {
	if p.Namespace != wiki.NamespaceArticle {
		return
	}
	title := dump.NormalizeTitle(ix.lang, p.Title)
	if title == "" {
		return
	}

	var target string
	if p.HasRedirectTag {
		target = dump.NormalizeTitle(ix.lang, p.RedirectTitle)
	} else if t, ok := ix.lang.RedirectTarget(p.Body); ok {
		target = dump.NormalizeTitle(ix.lang, t)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.ids[title] = p.ID
	if target != "" && target != title {
		ix.redirects[title] = target
	}
}

// Resolve returns the page id a link target points to. Redirects are
// followed one hop; a redirect whose target is unknown resolves to the
// redirect page itself.
func (ix *TitleIndex) Resolve(target string) (int64, bool) {
	title := dump.NormalizeTitle(ix.lang, target)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if to, ok := ix.redirects[title]; ok {
		if id, ok := ix.ids[to]; ok {
			return id, true
		}
	}
	id, ok := ix.ids[title]
	return id, ok
}

// Len returns the number of indexed titles.
func (ix *TitleIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Redirects returns the number of indexed redirects.
func (ix *TitleIndex) Redirects() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.redirects)
}
