package services

// BandSelection is the outcome of picking a tariff tier for a route.
type BandSelection struct {
	Band         BandDef
	PricePerUnit float64
}

// SelectBand picks the tariff tier for a chargeable quantity: the
// highest-threshold band whose threshold does not exceed the quantity
// and which has a published price. Tiers without a price are skipped
// in favor of the next lower priced tier. A quantity below the lowest
// threshold still uses the lowest band when it is priced (minimum
// charge tier). A published price of exactly 0 is never selectable.
//
// Returns nil when no tier qualifies; the caller must block quote
// generation and surface AvailableBands / NextPricedBand instead.
//
// FCL routes select by container type, see SelectBandByLabel.
func SelectBand(schema ModeSchema, route RouteRate, chargeableQty float64) *BandSelection {
	if schema.SelectByLabel {
		return nil
	}

	var selected *BandSelection
	for _, band := range schema.Bands {
		price, priced := route.Bands[band.Label]
		if !priced {
			continue
		}
		if band.Threshold <= chargeableQty {
			selected = &BandSelection{Band: band, PricePerUnit: price}
			continue
		}
		// Below-minimum special case: the lowest priced band applies
		// even when the quantity has not reached its threshold.
		if selected == nil && band.Label == schema.Bands[0].Label {
			selected = &BandSelection{Band: band, PricePerUnit: price}
		}
		break
	}
	return selected
}

// SelectBandByLabel resolves the flat rate for a directly chosen band
// (FCL container types). Unpriced and unknown labels return nil.
func SelectBandByLabel(schema ModeSchema, route RouteRate, label string) *BandSelection {
	band, ok := schema.BandByLabel(label)
	if !ok {
		return nil
	}
	price, priced := route.Bands[band.Label]
	if !priced {
		return nil
	}
	return &BandSelection{Band: band, PricePerUnit: price}
}

// AvailableBands lists the route's priced tiers in ascending threshold
// order, for the "these bands are available" message when selection
// fails.
func AvailableBands(schema ModeSchema, route RouteRate) []BandDef {
	var out []BandDef
	for _, band := range schema.Bands {
		if _, priced := route.Bands[band.Label]; priced {
			out = append(out, band)
		}
	}
	return out
}

// NextPricedBand returns the lowest priced tier whose threshold lies
// above the chargeable quantity: the minimum quantity the shipper has
// to reach for the route to become quotable.
func NextPricedBand(schema ModeSchema, route RouteRate, chargeableQty float64) (BandDef, bool) {
	for _, band := range schema.Bands {
		if band.Threshold <= chargeableQty {
			continue
		}
		if _, priced := route.Bands[band.Label]; priced {
			return band, true
		}
	}
	return BandDef{}, false
}
