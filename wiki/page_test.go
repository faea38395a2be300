package wiki

import (
	"testing"
	"time"

	"github.com/danielledeleo/wikigraph/wiki/lang"
)

func TestNamespaceOf(t *testing.T) {
	tests := []struct {
		name     string
		ns       lang.Namespace
		expected Namespace
	}{
		{name: "main", ns: lang.Main, expected: NamespaceArticle},
		{name: "category", ns: lang.Category, expected: NamespaceCategory},
		{name: "talk", ns: lang.Talk, expected: NamespaceSpecial},
		{name: "file", ns: lang.File, expected: NamespaceSpecial},
		{name: "template", ns: lang.Template, expected: NamespaceSpecial},
		{name: "other", ns: lang.Other, expected: NamespaceSpecial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NamespaceOf(tt.ns); got != tt.expected {
				t.Errorf("NamespaceOf(%v) = %v, want %v", tt.ns, got, tt.expected)
			}
		})
	}
}

func TestPageRecordOptionalFields(t *testing.T) {
	var p PageRecord
	if p.HasLastEdit() {
		t.Error("zero record should have no last edit")
	}
	if p.HasBody() {
		t.Error("zero record should have no body")
	}

	p.LastEdit = time.Date(2008, 8, 1, 12, 0, 0, 0, time.UTC)
	p.Body = "text"
	if !p.HasLastEdit() || !p.HasBody() {
		t.Errorf("expected both optional fields present: %+v", p)
	}
}
