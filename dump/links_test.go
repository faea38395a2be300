package dump

import (
	"strings"
	"testing"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinksLocationTypes(t *testing.T) {
	body := `{{Infobox planet
| star = [[Sun]]
}}
{{Short description|Planet}}
'''Earth''' is the third [[planet]] from the [[Sun|star]].

It has one [[Moon|natural satellite]]. See {{further|[[Geology]]}}.

== Orbit ==
Earth orbits in the [[Solar System]]s.
`
	links := ExtractLinks(english, body)
	got := make(map[string]ExtractedLink, len(links))
	for _, l := range links {
		got[l.AnchorText] = l
	}

	require.Contains(t, got, "Sun")
	assert.Equal(t, wiki.LocationInfobox, got["Sun"].LocationType)
	assert.False(t, got["Sun"].IsParseable)

	require.Contains(t, got, "planet")
	assert.Equal(t, wiki.LocationFirstParagraph, got["planet"].LocationType)
	assert.True(t, got["planet"].IsParseable)

	require.Contains(t, got, "star")
	assert.Equal(t, "Sun", got["star"].Target)
	assert.Equal(t, wiki.LocationFirstParagraph, got["star"].LocationType)

	require.Contains(t, got, "natural satellite")
	assert.Equal(t, wiki.LocationFirstSection, got["natural satellite"].LocationType)

	require.Contains(t, got, "Geology")
	assert.Equal(t, wiki.LocationTemplate, got["Geology"].LocationType)
	assert.False(t, got["Geology"].IsParseable)

	require.Contains(t, got, "Solar Systems")
	assert.Equal(t, "Solar System", got["Solar Systems"].Target)
	assert.Equal(t, wiki.LocationBody, got["Solar Systems"].LocationType)

	for _, l := range links {
		assert.Equal(t, "[["+l.Target, body[l.Location:int(l.Location)+2+len(l.Target)], l.AnchorText)
	}
}

func TestExtractLinksSkips(t *testing.T) {
	body := `[[File:Earth.png|thumb|The [[Moon]]]] <!-- [[Hidden]] --> <nowiki>[[Literal]]</nowiki>
[[Category:Planets]] [[:Category:Planets]] [[de:Erde]] [[wikt:earth]] [[#History]] [[Mars]]`

	var targets []string
	for _, l := range ExtractLinks(english, body) {
		targets = append(targets, l.Target)
	}
	assert.NotContains(t, targets, "Hidden")
	assert.NotContains(t, targets, "Literal")
	assert.NotContains(t, targets, "Category:Planets")
	assert.NotContains(t, targets, "de:Erde")
	assert.NotContains(t, targets, "wikt:earth")
	assert.Contains(t, targets, "Mars")
	for _, target := range targets {
		assert.False(t, strings.HasPrefix(target, "File:"), target)
	}
}

func TestExtractLinksOffsetsSurviveComments(t *testing.T) {
	body := "<!-- note -->[[Mars]]"
	links := ExtractLinks(english, body)
	require.Len(t, links, 1)
	assert.Equal(t, int64(strings.Index(body, "[[Mars]]")), links[0].Location)
}

func TestExtractLinksStripsAnchorMarkup(t *testing.T) {
	links := ExtractLinks(english, `[[Sun|<small>the</small> star & co]] [[Moon|<br/>]]`)
	require.Len(t, links, 2)
	assert.Equal(t, "the star & co", links[0].AnchorText)
	assert.Equal(t, "Moon", links[1].AnchorText)
}

func TestExtractLinksEmpty(t *testing.T) {
	assert.Empty(t, ExtractLinks(english, ""))
	assert.Empty(t, ExtractLinks(english, "no links here"))
}

func TestNormalizeTitle(t *testing.T) {
	tests := map[string]string{
		"earth":             "Earth",
		"Solar_System":      "Solar System",
		"  solar   system ": "Solar system",
		"Earth#History":     "Earth",
		":Earth":            "Earth",
		"#History":          "",
		"ñandú":             "Ñandú",
		"iPhone_(disambig)": "IPhone (disambig)",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeTitle(english, in), in)
	}
}
