package wiki

import (
	"slices"
	"testing"

	"github.com/danielledeleo/wikigraph/wiki/lang"
)

func link(src, dst int64, parseable bool, t LocationType) LinkRecord {
	return LinkRecord{Language: 1, AnchorText: "x", SourceID: src, DestID: dst, IsParseable: parseable, LocationType: t}
}

func TestFilterMatches(t *testing.T) {
	l := link(10, 20, true, LocationFirstParagraph)

	tests := []struct {
		name     string
		filter   Filter
		expected bool
	}{
		{"unconstrained", NewFilter(), true},
		{"language", NewFilter().WithLanguages(1), true},
		{"other language", NewFilter().WithLanguages(2), false},
		{"source", NewFilter().WithSourceIDs(5, 10), true},
		{"dest mismatch", NewFilter().WithDestIDs(10), false},
		{"parseable", NewFilter().WithParseable(true), true},
		{"not parseable", NewFilter().WithParseable(false), false},
		{"location", NewFilter().WithLocationTypes(LocationBody, LocationFirstParagraph), true},
		{"conjunction", NewFilter().WithSourceIDs(10).WithDestIDs(21), false},
		{"empty set", NewFilter().WithSourceIDs(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(l); got != tt.expected {
				t.Errorf("Matches = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFilterIsImmutable(t *testing.T) {
	ids := []int64{3, 1, 2, 1}
	base := NewFilter()
	f := base.WithSourceIDs(ids...)

	if !base.IsUnconstrained() {
		t.Error("builder mutated the receiver")
	}

	ids[0] = 99
	got, ok := f.SourceIDs()
	if !ok || !slices.Equal(got, []int64{1, 2, 3}) {
		t.Errorf("SourceIDs = %v, %v; want [1 2 3], true", got, ok)
	}

	got[0] = 42
	again, _ := f.SourceIDs()
	if again[0] != 1 {
		t.Error("accessor returned the internal slice")
	}
}

func TestFilterAnd(t *testing.T) {
	a := NewFilter().WithSourceIDs(1, 2, 3).WithLanguages(1)
	b := NewFilter().WithSourceIDs(2, 3, 4).WithParseable(true)
	f := a.And(b)

	src, _ := f.SourceIDs()
	if !slices.Equal(src, []int64{2, 3}) {
		t.Errorf("SourceIDs = %v, want [2 3]", src)
	}
	langs, ok := f.Languages()
	if !ok || !slices.Equal(langs, []lang.ID{1}) {
		t.Errorf("Languages = %v, %v", langs, ok)
	}
	if p, ok := f.Parseable(); !ok || !slices.Equal(p, []bool{true}) {
		t.Errorf("Parseable = %v, %v", p, ok)
	}
	if _, ok := f.DestIDs(); ok {
		t.Error("DestIDs should stay unconstrained")
	}

	disjoint := NewFilter().WithDestIDs(1).And(NewFilter().WithDestIDs(2))
	if !disjoint.IsEmpty() {
		t.Error("disjoint sets should yield an empty filter")
	}
}

func TestFilterEmptiness(t *testing.T) {
	if NewFilter().IsEmpty() {
		t.Error("unconstrained filter is not empty")
	}
	if !NewFilter().IsUnconstrained() {
		t.Error("NewFilter should be unconstrained")
	}
	if !NewFilter().WithLocationTypes().IsEmpty() {
		t.Error("explicit empty set should be empty")
	}
	if NewFilter().WithLocationTypes().IsUnconstrained() {
		t.Error("explicit empty set is a constraint")
	}
}

func TestPageFilter(t *testing.T) {
	out := PageFilter(1, 10, Outlinks)
	if src, ok := out.SourceIDs(); !ok || !slices.Equal(src, []int64{10}) {
		t.Errorf("outlinks should constrain source: %v %v", src, ok)
	}
	if _, ok := out.DestIDs(); ok {
		t.Error("outlinks should not constrain dest")
	}

	in := PageFilter(1, 10, Inlinks, WithParseable(false), WithLocationType(LocationInfobox))
	if dst, ok := in.DestIDs(); !ok || !slices.Equal(dst, []int64{10}) {
		t.Errorf("inlinks should constrain dest: %v %v", dst, ok)
	}
	if !in.Matches(link(7, 10, false, LocationInfobox)) {
		t.Error("expected infobox inlink to match")
	}
	if in.Matches(link(7, 10, true, LocationInfobox)) {
		t.Error("parseable option ignored")
	}
	if in.Matches(link(10, 7, false, LocationInfobox)) {
		t.Error("direction ignored")
	}
}
