package dump

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	linkRE    = regexp.MustCompile(`\[\[([^\[\]\|\n]+)(?:\|([^\[\]]*))?\]\]`)
	nowikiRE  = regexp.MustCompile(`(?s)<nowiki>.*?</nowiki>`)
	commentRE = regexp.MustCompile(`(?s)<!--.*?-->`)
	headingRE = regexp.MustCompile(`(?m)^==[^=]`)
)

// strictPolicy strips inline HTML from anchor text.
var strictPolicy = bluemonday.StrictPolicy()

// interwiki prefixes that are not language codes.
var interwikiPrefixes = map[string]bool{
	"w": true, "wikt": true, "wiktionary": true, "commons": true, "c": true,
	"m": true, "meta": true, "s": true, "wikisource": true, "q": true,
	"wikiquote": true, "n": true, "wikinews": true, "b": true, "wikibooks": true,
	"v": true, "wikiversity": true, "voy": true, "d": true, "wikidata": true, "mw": true,
}

// ExtractedLink is an internal link found in a page body, before its target
// title has been resolved to a page id.
type ExtractedLink struct {
	Target       string            `json:"target"`
	AnchorText   string            `json:"anchor_text"`
	Location     int64             `json:"location"`
	IsParseable  bool              `json:"is_parseable"`
	LocationType wiki.LocationType `json:"location_type"`
}

type templateSpan struct {
	start, end int
	name       string
}

// blank replaces every match of re with spaces so offsets stay valid.
func blank(re *regexp.Regexp, s string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
}

// topLevelTemplates returns the outermost {{...}} spans of s. An unclosed
// template runs to the end of s.
func topLevelTemplates(s string) []templateSpan {
	var (
		spans []templateSpan
		depth int
		start int
	)
	for i := 0; i < len(s)-1; i++ {
		switch {
		case s[i] == '{' && s[i+1] == '{':
			if depth == 0 {
				start = i
			}
			depth++
			i++
		case s[i] == '}' && s[i+1] == '}' && depth > 0:
			depth--
			i++
			if depth == 0 {
				spans = append(spans, templateSpan{start: start, end: i + 1, name: templateName(s[start+2 : i-1])})
			}
		}
	}
	if depth > 0 {
		spans = append(spans, templateSpan{start: start, end: len(s), name: templateName(s[start+2:])})
	}
	return spans
}

func templateName(inner string) string {
	if i := strings.IndexAny(inner, "|}\n"); i >= 0 {
		inner = inner[:i]
	}
	return strings.TrimSpace(inner)
}

func enclosingTemplate(spans []templateSpan, offset int) (templateSpan, bool) {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].end > offset })
	if i < len(spans) && spans[i].start <= offset {
		return spans[i], true
	}
	return templateSpan{}, false
}

// firstParagraph returns the span of the first prose paragraph in the lead
// section: the first line outside templates that is not markup, up to the
// next blank line.
func firstParagraph(s string, spans []templateSpan, sectionEnd int) (int, int) {
	pos := 0
	for pos < sectionEnd {
		end := strings.IndexByte(s[pos:], '\n')
		if end < 0 {
			end = len(s) - pos
		}
		line := strings.TrimSpace(s[pos : pos+end])
		_, inTemplate := enclosingTemplate(spans, pos)
		if line != "" && !inTemplate && isProse(line) {
			stop := strings.Index(s[pos:], "\n\n")
			if stop < 0 || pos+stop > sectionEnd {
				return pos, sectionEnd
			}
			return pos, pos + stop
		}
		pos += end + 1
	}
	return sectionEnd, sectionEnd
}

func isProse(line string) bool {
	for _, p := range []string{"{{", "}}", "|", "{|", "<", "__", "=", "[[File:", "[[Image:", "[[Category:"} {
		if strings.HasPrefix(line, p) {
			return false
		}
	}
	return true
}

func cleanAnchor(s string) string {
	if strings.ContainsRune(s, '<') {
		s = html.UnescapeString(strictPolicy.Sanitize(s))
	}
	return strings.TrimSpace(s)
}

func (e *extractor) skipTarget(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") || strings.HasPrefix(target, ":") {
		return true
	}
	if e.lang.HasNamespacePrefix(target) {
		return true
	}
	if i := strings.IndexByte(target, ':'); i > 0 {
		prefix := strings.ToLower(strings.TrimSpace(target[:i]))
		if interwikiPrefixes[prefix] {
			return true
		}
		if _, err := lang.ByCode(prefix); err == nil {
			return true
		}
	}
	return false
}

type extractor struct {
	lang *lang.Language
}

// linkTrail returns the letters directly following a link, which the wiki
// renders as part of the anchor ("[[animal]]s").
func linkTrail(s string) string {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !unicode.IsLetter(r) {
			break
		}
		n += size
	}
	return s[:n]
}

// ExtractLinks finds the internal links of a page body. Links to
// non-article namespaces, interwiki links and same-page anchors are skipped.
func ExtractLinks(l *lang.Language, body string) []ExtractedLink {
	if body == "" {
		return nil
	}
	e := extractor{lang: l}
	cleaned := blank(nowikiRE, blank(commentRE, body))
	spans := topLevelTemplates(cleaned)

	sectionEnd := len(cleaned)
	if loc := headingRE.FindStringIndex(cleaned); loc != nil {
		sectionEnd = loc[0]
	}
	paraStart, paraEnd := firstParagraph(cleaned, spans, sectionEnd)

	matches := linkRE.FindAllStringSubmatchIndex(cleaned, -1)
	links := make([]ExtractedLink, 0, len(matches))
	for _, m := range matches {
		target := strings.TrimSpace(cleaned[m[2]:m[3]])
		if e.skipTarget(target) {
			continue
		}
		anchor := ""
		if m[4] >= 0 {
			anchor = cleanAnchor(cleaned[m[4]:m[5]])
		}
		if anchor == "" {
			anchor = target
		}
		anchor += linkTrail(cleaned[m[1]:])

		link := ExtractedLink{
			Target:      target,
			AnchorText:  anchor,
			Location:    int64(m[0]),
			IsParseable: true,
		}
		if tpl, ok := enclosingTemplate(spans, m[0]); ok {
			link.IsParseable = false
			if strings.HasPrefix(strings.ToLower(tpl.name), "infobox") {
				link.LocationType = wiki.LocationInfobox
			} else {
				link.LocationType = wiki.LocationTemplate
			}
		} else {
			switch {
			case m[0] >= paraStart && m[0] < paraEnd:
				link.LocationType = wiki.LocationFirstParagraph
			case m[0] < sectionEnd:
				link.LocationType = wiki.LocationFirstSection
			default:
				link.LocationType = wiki.LocationBody
			}
		}
		links = append(links, link)
	}
	return links
}
