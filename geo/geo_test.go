package geo

import (
	"math"
	"testing"

	"github.com/rentyard/equipsearch/core"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func floatPtr(f float64) *float64 { return &f }

func TestDistance(t *testing.T) {
	t.Run("zero distance to self", func(t *testing.T) {
		assert.Equal(t, 0.0, Distance(35.0844, -106.6504, 35.0844, -106.6504))
	})

	t.Run("albuquerque to santa fe", func(t *testing.T) {
		// ~58 miles great-circle
		d := Distance(35.0844, -106.6504, 35.6870, -105.9378)
		assert.InDelta(t, 58, d, 3)
	})

	t.Run("albuquerque to denver", func(t *testing.T) {
		// ~334 miles great-circle
		d := Distance(35.0844, -106.6504, 39.7392, -104.9903)
		assert.InDelta(t, 334, d, 10)
	})
}

func TestDistanceProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lat1 := rapid.Float64Range(-90, 90).Draw(t, "lat1")
		lon1 := rapid.Float64Range(-180, 180).Draw(t, "lon1")
		lat2 := rapid.Float64Range(-90, 90).Draw(t, "lat2")
		lon2 := rapid.Float64Range(-180, 180).Draw(t, "lon2")

		d := Distance(lat1, lon1, lat2, lon2)
		reverse := Distance(lat2, lon2, lat1, lon1)

		assert.False(t, math.IsNaN(d))
		assert.GreaterOrEqual(t, d, 0.0)
		assert.InDelta(t, d, reverse, 1e-6, "distance must be symmetric")
		// Half the earth's circumference is the upper bound.
		assert.LessOrEqual(t, d, 12500.0)
	})
}

func TestMarketContains(t *testing.T) {
	t.Run("inside radius", func(t *testing.T) {
		// Santa Fe, ~58 miles out
		assert.True(t, DefaultMarket.Contains(35.6870, -105.9378, 100))
	})

	t.Run("outside radius", func(t *testing.T) {
		// Denver, ~334 miles out
		assert.False(t, DefaultMarket.Contains(39.7392, -104.9903, 100))
	})

	t.Run("non-positive radius uses market default", func(t *testing.T) {
		assert.True(t, DefaultMarket.Contains(35.6870, -105.9378, 0))
		assert.False(t, DefaultMarket.Contains(39.7392, -104.9903, 0))
	})
}

func TestResolveCoordinates(t *testing.T) {
	t.Run("structured point wins", func(t *testing.T) {
		rec := &core.EquipmentRecord{
			Point:     &core.GeoPoint{Type: "Point", Coordinates: []float64{-106.65, 35.08}},
			Latitude:  floatPtr(1),
			Longitude: floatPtr(2),
		}
		c, ok := ResolveCoordinates(rec)
		assert.True(t, ok)
		assert.Equal(t, 35.08, c.Latitude, "coordinates are stored [lon, lat]")
		assert.Equal(t, -106.65, c.Longitude)
	})

	t.Run("flat fields as fallback", func(t *testing.T) {
		rec := &core.EquipmentRecord{Latitude: floatPtr(35.08), Longitude: floatPtr(-106.65)}
		c, ok := ResolveCoordinates(rec)
		assert.True(t, ok)
		assert.Equal(t, Coordinates{Latitude: 35.08, Longitude: -106.65}, c)
	})

	t.Run("short coordinate slice falls through to flat fields", func(t *testing.T) {
		rec := &core.EquipmentRecord{
			Point:     &core.GeoPoint{Coordinates: []float64{-106.65}},
			Latitude:  floatPtr(35.08),
			Longitude: floatPtr(-106.65),
		}
		c, ok := ResolveCoordinates(rec)
		assert.True(t, ok)
		assert.Equal(t, 35.08, c.Latitude)
	})

	t.Run("no usable shape", func(t *testing.T) {
		_, ok := ResolveCoordinates(&core.EquipmentRecord{Latitude: floatPtr(35.08)})
		assert.False(t, ok)

		_, ok = ResolveCoordinates(nil)
		assert.False(t, ok)
	})
}
