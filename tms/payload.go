// Package tms talks to the external transport management system: it
// shapes computed quotes into the TMS create-quote contract and
// submits them over its bearer-authenticated REST API.
package tms

import (
	"time"

	"freightdesk/services"
)

// QuoteValidityDays is the fixed validity window stamped on every
// submitted quote.
const QuoteValidityDays = 7

// Party identifies a contact/shipper/consignee in the TMS schema.
type Party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Money is one side of a charge: the per-unit rate and extended
// amount in a currency.
type Money struct {
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Charge mirrors one breakdown line with parallel income/expense
// sub-objects. Lines without a cost basis carry income on both sides.
type Charge struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Income      Money   `json:"income"`
	Expense     Money   `json:"expense"`
}

// Commodity is the cargo block: weight/volume both per piece and in
// total, as the TMS expects.
type Commodity struct {
	Description   string  `json:"description"`
	Pieces        int     `json:"pieces"`
	WeightKg      float64 `json:"weight_kg"`
	VolumeM3      float64 `json:"volume_m3"`
	TotalWeightKg float64 `json:"total_weight_kg"`
	TotalVolumeM3 float64 `json:"total_volume_m3"`
}

// QuotePayload is the TMS create-quote request body.
type QuotePayload struct {
	QuoteNumber    string    `json:"quote_number"`
	Mode           string    `json:"mode"`
	Incoterm       string    `json:"incoterm"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Carrier        string    `json:"carrier,omitempty"`
	IssuedDate     string    `json:"issued_date"`
	ExpirationDate string    `json:"expiration_date"`
	Contact        Party     `json:"contact"`
	Shipper        Party     `json:"shipper"`
	Consignee      Party     `json:"consignee"`
	Commodity      Commodity `json:"commodity"`
	Charges        []Charge  `json:"charges"`
	TotalAmount    float64   `json:"total_amount"`
	Currency       string    `json:"currency"`
}

// BuildQuotePayload maps a computed quote into the TMS request shape.
// It is a pure structural transform: every number comes from the
// already-built breakdown, nothing is recomputed here. Contact,
// shipper and consignee all default to the requesting user's identity.
func BuildQuotePayload(
	reference string,
	schema services.ModeSchema,
	route services.RouteRate,
	chargeable services.Chargeable,
	breakdown services.Breakdown,
	incoterm services.Incoterm,
	commodityDesc string,
	user Party,
	now time.Time,
) QuotePayload {
	charges := make([]Charge, 0, len(breakdown.Lines))
	for _, l := range breakdown.Lines {
		expenseRate, expenseAmount := l.ExpenseRate, l.ExpenseAmount
		if expenseRate == 0 && expenseAmount == 0 {
			expenseRate, expenseAmount = l.Rate, l.Amount
		}
		charges = append(charges, Charge{
			Code:        l.Code,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			Income: Money{
				Rate:     l.Rate,
				Amount:   l.Amount,
				Currency: string(breakdown.Currency),
			},
			Expense: Money{
				Rate:     expenseRate,
				Amount:   expenseAmount,
				Currency: string(breakdown.Currency),
			},
		})
	}

	perPieceWeight := chargeable.TotalWeight
	perPieceVolume := chargeable.TotalVolume
	if chargeable.PieceCount > 1 {
		n := float64(chargeable.PieceCount)
		perPieceWeight = chargeable.TotalWeight / n
		perPieceVolume = chargeable.TotalVolume / n
	}

	return QuotePayload{
		QuoteNumber:    reference,
		Mode:           string(schema.Mode),
		Incoterm:       string(incoterm),
		Origin:         route.Origin,
		Destination:    route.Destination,
		Carrier:        route.Carrier,
		IssuedDate:     now.UTC().Format("2006-01-02"),
		ExpirationDate: now.UTC().AddDate(0, 0, QuoteValidityDays).Format("2006-01-02"),
		Contact:        user,
		Shipper:        user,
		Consignee:      user,
		Commodity: Commodity{
			Description:   commodityDesc,
			Pieces:        chargeable.PieceCount,
			WeightKg:      perPieceWeight,
			VolumeM3:      perPieceVolume,
			TotalWeightKg: chargeable.TotalWeight,
			TotalVolumeM3: chargeable.TotalVolume,
		},
		Charges:     charges,
		TotalAmount: breakdown.Total,
		Currency:    string(breakdown.Currency),
	}
}
