package dump

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// extractionRule pulls one field out of a block: the first capture group of
// the ordinal-th match of pattern, in document order.
type extractionRule struct {
	field   string
	pattern *regexp.Regexp
	ordinal int
}

func (r extractionRule) extract(s string) (string, bool) {
	matches := r.pattern.FindAllStringSubmatch(s, r.ordinal)
	if len(matches) < r.ordinal {
		return "", false
	}
	return matches[r.ordinal-1][1], true
}

var idPattern = regexp.MustCompile(`<id>(.*?)</id>`)

// The page id and the revision id share the <id> pattern. Within a page
// block the page's own <id> comes first and the revision's <id> second;
// the contributor's <id>, if any, comes after both.
var (
	titleRule      = extractionRule{field: "title", pattern: regexp.MustCompile(`<title>(.*?)</title>`), ordinal: 1}
	pageIDRule     = extractionRule{field: "id", pattern: idPattern, ordinal: 1}
	revisionIDRule = extractionRule{field: "revision id", pattern: idPattern, ordinal: 2}
	timestampRule  = extractionRule{field: "timestamp", pattern: regexp.MustCompile(`<timestamp>(.*?)</timestamp>`), ordinal: 1}
	redirectRule   = extractionRule{field: "redirect", pattern: regexp.MustCompile(`<redirect\s+title="(.*?)"\s*/>`), ordinal: 1}
)

var (
	textOpenRE  = regexp.MustCompile(`<text(?:\s[^>]*)?>`)
	textCloseRE = regexp.MustCompile(`</text>`)
)

// timestamp layouts seen in dumps, most common first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Parser turns raw <page> blocks of a dump into PageRecords. It is safe for
// concurrent use.
type Parser struct {
	lang *lang.Language
}

// NewParser returns a parser for dumps of the given language.
func NewParser(l *lang.Language) *Parser {
	return &Parser{lang: l}
}

// Language returns the language the parser was built for.
func (p *Parser) Language() *lang.Language {
	return p.lang
}

// Parse parses a block whose position in the dump is unknown.
func (p *Parser) Parse(raw string) (wiki.PageRecord, error) {
	return p.ParseRange(raw, -1, -1)
}

// ParseRange parses one page block. start and stop are the block's byte span
// in the dump; they are carried into the record and any error untouched.
//
// A block without a title, page id or revision id yields a *wiki.ParseError.
// An unparsable timestamp is logged and leaves LastEdit unset.
func (p *Parser) ParseRange(raw string, start, stop int64) (wiki.PageRecord, error) {
	fail := func(field string, err error) (wiki.PageRecord, error) {
		return wiki.PageRecord{}, &wiki.ParseError{Field: field, StartByte: start, StopByte: stop, Err: err}
	}

	raw = html.UnescapeString(raw)

	title, ok := titleRule.extract(raw)
	title = strings.TrimSpace(title)
	if !ok || title == "" {
		return fail(titleRule.field, wiki.ErrMissingField)
	}
	id, err := extractInt(pageIDRule, raw)
	if err != nil {
		return fail(pageIDRule.field, err)
	}
	revisionID, err := extractInt(revisionIDRule, raw)
	if err != nil {
		return fail(revisionIDRule.field, err)
	}

	rec := wiki.PageRecord{
		ID:         id,
		RevisionID: revisionID,
		Title:      title,
		Body:       extractBody(raw),
		Language:   p.lang.ID,
		Namespace:  wiki.NamespaceOf(p.lang.GuessNamespace(title)),
		StartByte:  start,
		StopByte:   stop,
	}

	ts, _ := timestampRule.extract(raw)
	if lastEdit, err := parseTimestamp(ts); err != nil {
		slog.Warn("could not parse last edited date", "title", title, "timestamp", ts, "error", err)
	} else {
		rec.LastEdit = lastEdit
	}

	rec.IsRedirect = p.lang.IsRedirect(rec.Body)
	if target, ok := redirectRule.extract(raw); ok {
		rec.HasRedirectTag = true
		rec.RedirectTitle = target
	}

	return rec, nil
}

func extractInt(rule extractionRule, raw string) (int64, error) {
	s, ok := rule.extract(raw)
	if !ok {
		return 0, wiki.ErrMissingField
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %q", rule.field, s)
	}
	return n, nil
}

// extractBody returns the content of the <text> element, or "" when the
// element is missing, self-closing or unterminated.
func extractBody(raw string) string {
	open := textOpenRE.FindStringIndex(raw)
	if open == nil || strings.HasSuffix(raw[open[0]:open[1]], "/>") {
		return ""
	}
	rest := raw[open[1]:]
	end := textCloseRE.FindStringIndex(rest)
	if end == nil {
		return ""
	}
	return rest[:end[0]]
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, wiki.ErrMissingField
	}
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
