package geo

import (
	"math"

	"github.com/rentyard/equipsearch/core"
)

const earthRadiusMiles = 3958.8

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Market describes the home market: the center point local inventory is
// measured from, the display city/state used for purchase-only
// normalization, and the default service radius.
type Market struct {
	Latitude    float64
	Longitude   float64
	City        string
	State       string
	RadiusMiles float64
}

// DefaultMarket is the Albuquerque home market configuration.
var DefaultMarket = Market{
	Latitude:    35.0844,
	Longitude:   -106.6504,
	City:        "Albuquerque",
	State:       "NM",
	RadiusMiles: 100,
}

// Distance returns the great-circle (haversine) distance in miles between
// two points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// Contains reports whether the point lies within radiusMiles of the market
// center. A non-positive radius falls back to the market's default.
func (m Market) Contains(lat, lon, radiusMiles float64) bool {
	if radiusMiles <= 0 {
		radiusMiles = m.RadiusMiles
	}
	return Distance(m.Latitude, m.Longitude, lat, lon) <= radiusMiles
}

// ResolveCoordinates extracts a usable coordinate pair from a record.
//
// The upstream service and assorted callers disagree on location shape, so
// resolution is ordered: the structured GeoJSON point first (stored in
// [lon, lat] order), the flat latitude/longitude fields second, otherwise
// no coordinates.
func ResolveCoordinates(rec *core.EquipmentRecord) (Coordinates, bool) {
	if rec == nil {
		return Coordinates{}, false
	}
	if rec.Point != nil && len(rec.Point.Coordinates) >= 2 {
		return Coordinates{
			Latitude:  rec.Point.Coordinates[1],
			Longitude: rec.Point.Coordinates[0],
		}, true
	}
	if rec.Latitude != nil && rec.Longitude != nil {
		return Coordinates{
			Latitude:  *rec.Latitude,
			Longitude: *rec.Longitude,
		}, true
	}
	return Coordinates{}, false
}
