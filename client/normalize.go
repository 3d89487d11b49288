package client

import (
	"github.com/rentyard/equipsearch/core"
	"github.com/rentyard/equipsearch/geo"
)

// normalizeRecords applies the purchase-only business rules in place. It
// runs on every successful upstream call before the cache write, so cached
// results are always already normalized.
//
// Rules:
//   - no usable rental rates + purchase enabled with a positive price →
//     purchase-only
//   - outside the market's service radius + purchase enabled →
//     purchase-only, and the displayed city/state is overwritten with the
//     home market's (purchase-only items always show a local pickup point;
//     this is display normalization, not a data fix)
func normalizeRecords(records []core.EquipmentRecord, market geo.Market) {
	for i := range records {
		rec := &records[i]

		if !rec.HasRentalRates() && rec.BuyItNowEnabled && rec.BuyItNowPrice > 0 {
			rec.BuyItNowOnly = true
		}

		coords, ok := geo.ResolveCoordinates(rec)
		if !ok {
			continue
		}
		if !market.Contains(coords.Latitude, coords.Longitude, market.RadiusMiles) && rec.BuyItNowEnabled {
			rec.BuyItNowOnly = true
			rec.City = market.City
			rec.State = market.State
		}
	}
}
