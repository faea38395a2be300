package wiki

import (
	"cmp"
	"slices"

	"github.com/danielledeleo/wikigraph/wiki/lang"
)

// Filter selects link records. It is a conjunction of optional per-field
// constraints; a nil set leaves the field unconstrained, an empty non-nil set
// matches nothing.
//
// Filter is a value: every method returns a new Filter and never mutates the
// receiver or the slices passed in.
type Filter struct {
	languages     []lang.ID
	locationTypes []LocationType
	sourceIDs     []int64
	destIDs       []int64
	parseable     []bool
}

// NewFilter returns an unconstrained filter.
func NewFilter() Filter {
	return Filter{}
}

// set returns a sorted, de-duplicated copy of vals that is non-nil even when empty.
func set[T cmp.Ordered](vals []T) []T {
	out := make([]T, len(vals))
	copy(out, vals)
	slices.Sort(out)
	return slices.Compact(out)
}

func boolSet(vals []bool) []bool {
	var hasFalse, hasTrue bool
	for _, v := range vals {
		if v {
			hasTrue = true
		} else {
			hasFalse = true
		}
	}
	out := make([]bool, 0, 2)
	if hasFalse {
		out = append(out, false)
	}
	if hasTrue {
		out = append(out, true)
	}
	return out
}

func intersect[T comparable](a, b []T) []T {
	if a == nil {
		return clone(b)
	}
	if b == nil {
		return clone(a)
	}
	out := make([]T, 0, min(len(a), len(b)))
	for _, v := range a {
		if slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}

func clone[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func allowed[T comparable](constraint []T, v T) bool {
	return constraint == nil || slices.Contains(constraint, v)
}

// WithLanguages constrains the link language.
func (f Filter) WithLanguages(ids ...lang.ID) Filter {
	f.languages = set(ids)
	return f
}

// WithLocationTypes constrains the location type.
func (f Filter) WithLocationTypes(types ...LocationType) Filter {
	f.locationTypes = set(types)
	return f
}

// WithSourceIDs constrains the source page id.
func (f Filter) WithSourceIDs(ids ...int64) Filter {
	f.sourceIDs = set(ids)
	return f
}

// WithDestIDs constrains the destination page id.
func (f Filter) WithDestIDs(ids ...int64) Filter {
	f.destIDs = set(ids)
	return f
}

// WithParseable constrains the parseable flag.
func (f Filter) WithParseable(vals ...bool) Filter {
	f.parseable = boolSet(vals)
	return f
}

// And returns the conjunction of f and g.
func (f Filter) And(g Filter) Filter {
	return Filter{
		languages:     intersect(f.languages, g.languages),
		locationTypes: intersect(f.locationTypes, g.locationTypes),
		sourceIDs:     intersect(f.sourceIDs, g.sourceIDs),
		destIDs:       intersect(f.destIDs, g.destIDs),
		parseable:     intersect(f.parseable, g.parseable),
	}
}

// Matches evaluates the filter against a single record.
func (f Filter) Matches(l LinkRecord) bool {
	return allowed(f.languages, l.Language) &&
		allowed(f.locationTypes, l.LocationType) &&
		allowed(f.sourceIDs, l.SourceID) &&
		allowed(f.destIDs, l.DestID) &&
		allowed(f.parseable, l.IsParseable)
}

// IsEmpty reports whether some field is constrained to the empty set, in
// which case no record can match.
func (f Filter) IsEmpty() bool {
	return isEmptySet(f.languages) || isEmptySet(f.locationTypes) ||
		isEmptySet(f.sourceIDs) || isEmptySet(f.destIDs) || isEmptySet(f.parseable)
}

// IsUnconstrained reports whether the filter matches every record.
func (f Filter) IsUnconstrained() bool {
	return f.languages == nil && f.locationTypes == nil && f.sourceIDs == nil &&
		f.destIDs == nil && f.parseable == nil
}

func isEmptySet[T any](s []T) bool {
	return s != nil && len(s) == 0
}

// Languages returns the allowed languages and whether the field is constrained.
func (f Filter) Languages() ([]lang.ID, bool) {
	return clone(f.languages), f.languages != nil
}

// LocationTypes returns the allowed location types and whether the field is constrained.
func (f Filter) LocationTypes() ([]LocationType, bool) {
	return clone(f.locationTypes), f.locationTypes != nil
}

// SourceIDs returns the allowed source ids and whether the field is constrained.
func (f Filter) SourceIDs() ([]int64, bool) {
	return clone(f.sourceIDs), f.sourceIDs != nil
}

// DestIDs returns the allowed destination ids and whether the field is constrained.
func (f Filter) DestIDs() ([]int64, bool) {
	return clone(f.destIDs), f.destIDs != nil
}

// Parseable returns the allowed parseable flags and whether the field is constrained.
func (f Filter) Parseable() ([]bool, bool) {
	return clone(f.parseable), f.parseable != nil
}

// PageLinkOption narrows a per-page link query.
type PageLinkOption func(*Filter)

// WithParseable keeps only links with the given parseable flag.
func WithParseable(parseable bool) PageLinkOption {
	return func(f *Filter) { *f = f.WithParseable(parseable) }
}

// WithLocationType keeps only links with the given location type.
func WithLocationType(t LocationType) PageLinkOption {
	return func(f *Filter) { *f = f.WithLocationTypes(t) }
}

// PageFilter builds the filter for the links of one page in one direction.
func PageFilter(language lang.ID, pageID int64, dir Direction, opts ...PageLinkOption) Filter {
	f := NewFilter().WithLanguages(language)
	if dir == Inlinks {
		f = f.WithDestIDs(pageID)
	} else {
		f = f.WithSourceIDs(pageID)
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}
