package wiki

import (
	"time"

	"github.com/danielledeleo/wikigraph/wiki/lang"
)

// Namespace is the coarse role of a page.
type Namespace int

const (
	NamespaceArticle Namespace = iota
	NamespaceCategory
	NamespaceSpecial
)

func (n Namespace) String() string {
	switch n {
	case NamespaceArticle:
		return "article"
	case NamespaceCategory:
		return "category"
	default:
		return "special"
	}
}

// NamespaceOf collapses a language namespace into a page Namespace.
func NamespaceOf(ns lang.Namespace) Namespace {
	switch ns {
	case lang.Main:
		return NamespaceArticle
	case lang.Category:
		return NamespaceCategory
	default:
		return NamespaceSpecial
	}
}

// PageRecord is one page extracted from a dump block.
//
// IsRedirect comes from the body's redirect pattern, HasRedirectTag from the
// <redirect/> element of the block. The two are independent and may disagree.
type PageRecord struct {
	ID             int64     `json:"id"`
	RevisionID     int64     `json:"revision_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body,omitempty"`
	LastEdit       time.Time `json:"last_edit"`
	Language       lang.ID   `json:"language"`
	Namespace      Namespace `json:"namespace"`
	IsRedirect     bool      `json:"is_redirect"`
	HasRedirectTag bool      `json:"has_redirect_tag"`
	RedirectTitle  string    `json:"redirect_title,omitempty"`

	// Byte span of the block in the dump, -1 when unknown.
	StartByte int64 `json:"start_byte"`
	StopByte  int64 `json:"stop_byte"`
}

// HasLastEdit reports whether the timestamp could be parsed.
func (p PageRecord) HasLastEdit() bool {
	return !p.LastEdit.IsZero()
}

// HasBody reports whether the block carried a text element with content.
func (p PageRecord) HasBody() bool {
	return p.Body != ""
}
