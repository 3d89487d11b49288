package core

import (
	"strconv"
	"strings"
)

// LocationFilter restricts a search to a radius around a center point.
type LocationFilter struct {
	Latitude    float64
	Longitude   float64
	RadiusMiles float64
}

// SearchCriteria is an immutable description of one search. Two criteria
// values whose Key() serializations are identical are cache-equivalent.
//
// All filter fields are optional; the zero value matches everything the
// baseline availability filter allows.
type SearchCriteria struct {
	// EquipmentTypes restricts results to the listed primary types. A single
	// entry produces an equality predicate; multiple entries produce an
	// OR-of-equality group, which is how category aggregation combines
	// several sub-types into one upstream call.
	EquipmentTypes []string
	Make           string
	Model          string
	Keywords       []string
	Location       *LocationFilter

	MinCapacity *float64
	MaxCapacity *float64

	// Top caps the number of records returned. Zero means the service
	// default page size.
	Top int
}

// Key returns a stable canonical serialization of the criteria. Every field
// is emitted in a fixed order so that equal criteria always serialize
// byte-identically, independent of how they were constructed.
func (c SearchCriteria) Key() string {
	var b strings.Builder
	b.WriteString("types=")
	b.WriteString(strings.Join(c.EquipmentTypes, ","))
	b.WriteString("|make=")
	b.WriteString(c.Make)
	b.WriteString("|model=")
	b.WriteString(c.Model)
	b.WriteString("|kw=")
	b.WriteString(strings.Join(c.Keywords, ","))
	b.WriteString("|loc=")
	if c.Location != nil {
		b.WriteString(formatFloat(c.Location.Latitude))
		b.WriteString(",")
		b.WriteString(formatFloat(c.Location.Longitude))
		b.WriteString(",")
		b.WriteString(formatFloat(c.Location.RadiusMiles))
	}
	b.WriteString("|cap=")
	if c.MinCapacity != nil {
		b.WriteString(formatFloat(*c.MinCapacity))
	}
	b.WriteString(",")
	if c.MaxCapacity != nil {
		b.WriteString(formatFloat(*c.MaxCapacity))
	}
	b.WriteString("|top=")
	b.WriteString(strconv.Itoa(c.Top))
	return b.String()
}

// KeyID returns the hashed form of Key, suitable for compact cache keys.
func (c SearchCriteria) KeyID() ID {
	return IDFromContent(c.Key())
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
