package dump

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/danielledeleo/wikigraph/wiki/lang"
	"golang.org/x/text/cases"
)

// casers are not safe for concurrent use, so each language gets a pool.
var upperPools sync.Map // lang.ID -> *sync.Pool

func upperFirst(l *lang.Language, s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	v, _ := upperPools.LoadOrStore(l.ID, &sync.Pool{
		New: func() any {
			c := cases.Upper(l.Tag)
			return &c
		},
	})
	pool := v.(*sync.Pool)
	c := pool.Get().(*cases.Caser)
	first := c.String(s[:size])
	pool.Put(c)
	return first + s[size:]
}

// NormalizeTitle canonicalizes a page title or link target the way the wiki
// does: underscores become spaces, runs of whitespace collapse, a section
// anchor or leading colon is dropped and the first letter is upper-cased.
func NormalizeTitle(l *lang.Language, s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimPrefix(s, ":")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return upperFirst(l, s)
}
