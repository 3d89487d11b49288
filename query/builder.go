package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rentyard/equipsearch/core"
)

const milesToKm = 1.60934

// fuzzyMinLength is the minimum token length that also gets an
// edit-distance-1 fuzzy variant. Shorter tokens only get a prefix match.
const fuzzyMinLength = 3

// Request is the upstream service's search request body.
type Request struct {
	Count      bool     `json:"count"`
	Filter     string   `json:"filter,omitempty"`
	Search     string   `json:"search,omitempty"`
	SearchMode string   `json:"searchMode,omitempty"`
	Top        int      `json:"top,omitempty"`
	OrderBy    string   `json:"orderby,omitempty"`
	Facets     []string `json:"facets,omitempty"`
}

// BuildRequest assembles the full request body for the given criteria.
func BuildRequest(c core.SearchCriteria) Request {
	req := Request{
		Count:      true,
		Filter:     BuildFilter(c),
		Search:     BuildSearch(c.Keywords),
		SearchMode: "any",
		Top:        c.Top,
	}
	if c.Location != nil {
		req.OrderBy = fmt.Sprintf("geo.distance(location, geography'POINT(%s %s)') asc",
			formatCoord(c.Location.Longitude), formatCoord(c.Location.Latitude))
	}
	return req
}

// BuildFilter builds the conjunction of filter predicates for the criteria.
// The baseline availability predicates are always present; everything else
// is appended only when the corresponding criteria field is set.
func BuildFilter(c core.SearchCriteria) string {
	predicates := []string{
		"(status eq 'available' or status eq 'onboarding')",
		"requiresAdminApproval eq false",
		"(approvalStatus eq 'approved' or approvalStatus eq null)",
	}

	if c.Location != nil {
		predicates = append(predicates, fmt.Sprintf(
			"geo.distance(location, geography'POINT(%s %s)') le %s",
			formatCoord(c.Location.Longitude),
			formatCoord(c.Location.Latitude),
			formatCoord(c.Location.RadiusMiles*milesToKm)))
	}

	switch len(c.EquipmentTypes) {
	case 0:
	case 1:
		predicates = append(predicates, "primaryType eq "+quote(c.EquipmentTypes[0]))
	default:
		group := make([]string, 0, len(c.EquipmentTypes))
		for _, t := range c.EquipmentTypes {
			group = append(group, "primaryType eq "+quote(t))
		}
		predicates = append(predicates, "("+strings.Join(group, " or ")+")")
	}

	if c.Make != "" {
		predicates = append(predicates, "make eq "+quote(c.Make))
	}
	if c.Model != "" {
		predicates = append(predicates, "model eq "+quote(c.Model))
	}
	if c.MinCapacity != nil {
		predicates = append(predicates, "capacity ge "+formatCoord(*c.MinCapacity))
	}
	if c.MaxCapacity != nil {
		predicates = append(predicates, "capacity le "+formatCoord(*c.MaxCapacity))
	}

	return strings.Join(predicates, " and ")
}

// BuildSearch expands keywords into a permissive-recall Lucene expression.
// Every token gets a prefix variant; tokens of fuzzyMinLength or longer also
// get an edit-distance-1 fuzzy variant. All variants are OR-joined so the
// search favors showing some results over showing none.
func BuildSearch(keywords []string) string {
	variants := make([]string, 0, len(keywords)*2)
	for _, kw := range keywords {
		tok := strings.TrimSpace(kw)
		if tok == "" {
			continue
		}
		variants = append(variants, tok+"*")
		if len(tok) >= fuzzyMinLength {
			variants = append(variants, tok+"~1")
		}
	}
	if len(variants) == 0 {
		return "*"
	}
	return strings.Join(variants, " OR ")
}

// quote wraps a value as an OData string literal, doubling embedded quotes.
func quote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
