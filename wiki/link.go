package wiki

import (
	"fmt"
	"strings"

	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/pkg/errors"
)

// LocationType classifies where in a page a link occurs. The values are
// persisted by ordinal and must never be reordered.
type LocationType int16

const (
	LocationNone LocationType = iota
	LocationFirstParagraph
	LocationFirstSection
	LocationBody
	LocationInfobox
	LocationTemplate
)

var locationTypeNames = [...]string{"none", "first_paragraph", "first_section", "body", "infobox", "template"}

// LocationTypes lists every location type in ordinal order.
func LocationTypes() []LocationType {
	out := make([]LocationType, len(locationTypeNames))
	for i := range out {
		out[i] = LocationType(i)
	}
	return out
}

func (t LocationType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("LocationType(%d)", int16(t))
	}
	return locationTypeNames[t]
}

// MarshalText encodes t by name.
func (t LocationType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.Errorf("invalid location type %d", int16(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts a name or an ordinal.
func (t *LocationType) UnmarshalText(b []byte) error {
	v, err := ParseLocationType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Valid reports whether t is one of the defined location types.
func (t LocationType) Valid() bool {
	return t >= 0 && int(t) < len(locationTypeNames)
}

// ParseLocationType parses a location type by name or ordinal.
func ParseLocationType(s string) (LocationType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range locationTypeNames {
		if s == name || s == fmt.Sprint(i) {
			return LocationType(i), nil
		}
	}
	return LocationNone, errors.Errorf("unknown location type %q", s)
}

// LocationTypeFromOrdinal converts a persisted ordinal back to a LocationType.
func LocationTypeFromOrdinal(ord int64) (LocationType, error) {
	if ord < 0 || ord >= int64(len(locationTypeNames)) {
		return LocationNone, errors.Errorf("location type ordinal %d out of range", ord)
	}
	return LocationType(ord), nil
}

// LinkRecord is a link from one page to another within a single language.
type LinkRecord struct {
	Language     lang.ID      `json:"language"`
	AnchorText   string       `json:"anchor_text"`
	SourceID     int64        `json:"source_id"`
	DestID       int64        `json:"dest_id"`
	Location     int64        `json:"location"`
	IsParseable  bool         `json:"is_parseable"`
	LocationType LocationType `json:"location_type"`
}

// Validate checks the fields a link record must carry.
func (l LinkRecord) Validate() error {
	if l.Language == 0 {
		return errors.Wrap(ErrInvalidLink, "missing language")
	}
	if l.SourceID <= 0 {
		return errors.Wrapf(ErrInvalidLink, "source id %d", l.SourceID)
	}
	if l.DestID <= 0 {
		return errors.Wrapf(ErrInvalidLink, "dest id %d", l.DestID)
	}
	if !l.LocationType.Valid() {
		return errors.Wrapf(ErrInvalidLink, "location type %d", l.LocationType)
	}
	return nil
}

// Direction selects which end of a link a page id is matched against.
type Direction int

const (
	// Outlinks matches links whose source is the page.
	Outlinks Direction = iota
	// Inlinks matches links whose destination is the page.
	Inlinks
)

func (d Direction) String() string {
	if d == Inlinks {
		return "inlinks"
	}
	return "outlinks"
}

// ParseDirection parses "outlinks"/"out" or "inlinks"/"in".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "out", "outlinks":
		return Outlinks, nil
	case "in", "inlinks":
		return Inlinks, nil
	}
	return Outlinks, errors.Errorf("unknown direction %q", s)
}
