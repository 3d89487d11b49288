package core

import "time"

// GeoPoint is the structured location shape returned by the search service.
// Coordinates are in [longitude, latitude] order (GeoJSON convention).
type GeoPoint struct {
	Type        string    `json:"type,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty"`
}

// Rates is a daily/weekly/monthly rental rate breakdown.
// A zero value for any period means "no rate published for that period".
type Rates struct {
	Daily   float64 `json:"daily,omitempty"`
	Weekly  float64 `json:"weekly,omitempty"`
	Monthly float64 `json:"monthly,omitempty"`
}

// RateSchedule is a named rate plan attached to a record, e.g. "standard"
// or "bare rental". Records may carry several; the effective rates are
// derived from them when no direct breakdown is present.
type RateSchedule struct {
	Label   string  `json:"label,omitempty"`
	Daily   float64 `json:"daily,omitempty"`
	Weekly  float64 `json:"weekly,omitempty"`
	Monthly float64 `json:"monthly,omitempty"`
}

// Attachment is a related implement (bucket, fork set, breaker) listed on an
// equipment record, with its own optional rate structure.
type Attachment struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Rates *Rates `json:"rates,omitempty"`
}

// EquipmentRecord is a normalized view of one piece of rentable or
// purchasable equipment as returned by the upstream search service.
//
// The location is heterogeneous: either the structured Point shape or the
// flat Latitude/Longitude fields may be populated. Callers resolve
// coordinates through the geo package rather than probing these fields.
type EquipmentRecord struct {
	ID          string  `json:"id"`
	Make        string  `json:"make,omitempty"`
	Model       string  `json:"model,omitempty"`
	Year        int     `json:"year,omitempty"`
	PrimaryType string  `json:"primaryType,omitempty"`
	Hours       float64 `json:"hours,omitempty"`
	Capacity    float64 `json:"capacity,omitempty"`

	Point     *GeoPoint `json:"location,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`

	// RentalRate is the flat monthly figure some records carry instead of a
	// full breakdown.
	RentalRate    *float64       `json:"rentalRate,omitempty"`
	Rates         *Rates         `json:"rates,omitempty"`
	RateSchedules []RateSchedule `json:"rateSchedules,omitempty"`

	BuyItNowEnabled bool    `json:"buyItNowEnabled"`
	BuyItNowPrice   float64 `json:"buyItNowPrice,omitempty"`
	// BuyItNowOnly marks records that cannot be rented, only purchased.
	// It is derived during normalization, never trusted from upstream.
	BuyItNowOnly bool `json:"buyItNowOnly"`

	Attachments []Attachment `json:"attachments,omitempty"`
	Images      []string     `json:"images,omitempty"`
}

// EffectiveRates collapses the record's rate sources into a single
// breakdown. Priority: the direct Rates struct, then the first
// strictly-positive figure per period across the rate schedules, then
// RentalRate as a monthly figure. Non-positive figures are discarded at
// every step.
func (r *EquipmentRecord) EffectiveRates() Rates {
	var out Rates
	if r.Rates != nil {
		if r.Rates.Daily > 0 {
			out.Daily = r.Rates.Daily
		}
		if r.Rates.Weekly > 0 {
			out.Weekly = r.Rates.Weekly
		}
		if r.Rates.Monthly > 0 {
			out.Monthly = r.Rates.Monthly
		}
	}
	for _, s := range r.RateSchedules {
		if out.Daily == 0 && s.Daily > 0 {
			out.Daily = s.Daily
		}
		if out.Weekly == 0 && s.Weekly > 0 {
			out.Weekly = s.Weekly
		}
		if out.Monthly == 0 && s.Monthly > 0 {
			out.Monthly = s.Monthly
		}
	}
	if out.Monthly == 0 && r.RentalRate != nil && *r.RentalRate > 0 {
		out.Monthly = *r.RentalRate
	}
	return out
}

// HasRentalRates reports whether any strictly-positive rental figure
// survives rate resolution.
func (r *EquipmentRecord) HasRentalRates() bool {
	rates := r.EffectiveRates()
	return rates.Daily > 0 || rates.Weekly > 0 || rates.Monthly > 0
}

// Identity returns the deduplication key for the record. Records with an
// upstream ID hash it directly; records without one fall back to a
// content-based hash so dedupe still behaves deterministically.
func (r *EquipmentRecord) Identity() ID {
	if r.ID != "" {
		return IDFromContent(r.ID)
	}
	return IDFromContent(r.Make + "|" + r.Model + "|" + r.PrimaryType)
}

// SearchResult is the outcome of one search call. Total is the service-side
// match count, which may exceed len(Records) when the result cap truncates.
type SearchResult struct {
	Records []EquipmentRecord `json:"records"`
	Total   int64             `json:"total"`
}

// CacheEntry pairs a search result with its insertion time. Staleness is
// decided at read time against the configured TTL.
type CacheEntry struct {
	Result     *SearchResult
	InsertedAt time.Time
}
