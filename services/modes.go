// Package services implements the tariff engine: rate sheet parsing,
// route indexing, chargeable-weight math and charge breakdown building.
package services

import (
	"strings"
)

// Mode identifies a transport mode. Each mode carries its own band
// layout, unit constants and charge template via ModeSchema.
type Mode string

const (
	ModeAir Mode = "air"
	ModeFCL Mode = "fcl"
	ModeLCL Mode = "lcl"
)

// ParseMode maps a path/query value to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAir:
		return ModeAir, true
	case ModeFCL:
		return ModeFCL, true
	case ModeLCL:
		return ModeLCL, true
	}
	return "", false
}

// Currency is an ISO 4217 code from the closed per-mode vocabulary.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyCHF Currency = "CHF"
	CurrencyCLP Currency = "CLP"
	CurrencySEK Currency = "SEK"
)

// Incoterm is a standardized trade term. Only terms that put origin
// pickup on the forwarder trigger the pickup charge line.
type Incoterm string

const (
	IncotermEXW Incoterm = "EXW"
	IncotermFCA Incoterm = "FCA"
	IncotermFOB Incoterm = "FOB"
	IncotermCFR Incoterm = "CFR"
	IncotermCIF Incoterm = "CIF"
	IncotermDAP Incoterm = "DAP"
	IncotermDDP Incoterm = "DDP"
)

// Incoterms lists the accepted trade terms, in display order.
var Incoterms = []Incoterm{
	IncotermEXW, IncotermFCA, IncotermFOB, IncotermCFR,
	IncotermCIF, IncotermDAP, IncotermDDP,
}

// RequiresOriginPickup reports whether the term makes the forwarder
// collect the cargo at the supplier's door (the EXW charge line).
func (i Incoterm) RequiresOriginPickup() bool {
	return i == IncotermEXW
}

// ParseIncoterm maps a form value to an Incoterm.
func ParseIncoterm(s string) (Incoterm, bool) {
	v := Incoterm(strings.ToUpper(strings.TrimSpace(s)))
	for _, it := range Incoterms {
		if v == it {
			return it, true
		}
	}
	return "", false
}

// BandDef is one tariff tier: a label as published on the sheet and the
// quantity threshold at which the tier starts to apply. FCL "bands" are
// container types selected by label, so their thresholds are unused.
type BandDef struct {
	Label     string
	Threshold float64
}

// RateStep is one step of a stepped per-unit rate: Rate applies once
// the chargeable quantity reaches MinQty. Steps are ordered descending
// by MinQty so the first match wins.
type RateStep struct {
	MinQty float64
	Rate   float64
}

// ChargeSchema holds the fixed constants behind a mode's charge
// breakdown. All floors and fees are in the route currency.
type ChargeSchema struct {
	HandlingFee float64

	DocumentCode string // "AWB" or "BL"
	DocumentDesc string
	DocumentFee  float64

	TransferRate  float64
	TransferFloor float64

	PickupSteps []RateStep
	PickupFloor float64

	Markup float64 // freight income = expense * (1 + Markup)

	InsuranceBuffer float64
	InsuranceRate   float64
	InsuranceFloor  float64
}

// ColumnLayout maps sheet columns to fields. The published sheets are
// positional: reordering columns corrupts parsing, there is no
// header-name binding.
type ColumnLayout struct {
	Origin      int
	Destination int
	Carrier     int
	Currency    int
	Bands       []int // one column per BandDef, same order
	TransitTime int
	Frequency   int
	Routing     int
	Remarks     int
	ValidUntil  int
}

// ModeSchema bundles everything mode-specific: the band table shape,
// the sheet column layout, unit constants and the charge template.
type ModeSchema struct {
	Mode             Mode
	UnitLabel        string  // "kg", "cntr", "w/m"
	VolumetricFactor float64 // kg per m3; 0 when volumetric weight does not apply
	SelectByLabel    bool    // FCL: band chosen by container type, not threshold
	SkipRows         int     // leading header rows on the published sheet
	Bands            []BandDef
	Columns          ColumnLayout
	Currencies       []Currency
	Charges          ChargeSchema
}

// ParseCurrency maps a free-text sheet cell to a currency from the
// schema's vocabulary. Unrecognized or empty values default to USD.
func (s ModeSchema) ParseCurrency(raw string) Currency {
	v := strings.ToUpper(strings.TrimSpace(raw))
	for _, c := range s.Currencies {
		if v == string(c) {
			return c
		}
	}
	return CurrencyUSD
}

// BandByLabel returns the band definition with the given label.
func (s ModeSchema) BandByLabel(label string) (BandDef, bool) {
	for _, b := range s.Bands {
		if strings.EqualFold(b.Label, label) {
			return b, true
		}
	}
	return BandDef{}, false
}

var airSchema = ModeSchema{
	Mode:             ModeAir,
	UnitLabel:        "kg",
	VolumetricFactor: 167,
	SkipRows:         2,
	Bands: []BandDef{
		{Label: "45kg", Threshold: 45},
		{Label: "100kg", Threshold: 100},
		{Label: "300kg", Threshold: 300},
		{Label: "500kg", Threshold: 500},
		{Label: "1000kg", Threshold: 1000},
	},
	Columns: ColumnLayout{
		Origin: 0, Destination: 1, Carrier: 2, Currency: 3,
		Bands:       []int{4, 5, 6, 7, 8},
		TransitTime: 9, Frequency: 10, Routing: 11, Remarks: 12, ValidUntil: 13,
	},
	Currencies: []Currency{
		CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyCAD,
		CurrencyCHF, CurrencyCLP, CurrencySEK,
	},
	Charges: ChargeSchema{
		HandlingFee:  45,
		DocumentCode: "AWB",
		DocumentDesc: "Air Waybill Fee",
		DocumentFee:  30,

		TransferRate:  0.15,
		TransferFloor: 50,

		PickupSteps: []RateStep{
			{MinQty: 1000, Rate: 0.60},
			{MinQty: 500, Rate: 0.65},
			{MinQty: 250, Rate: 0.75},
			{MinQty: 0, Rate: 0.80},
		},
		PickupFloor: 190,

		Markup: 0.15,

		InsuranceBuffer: 1.10,
		InsuranceRate:   0.0025,
		InsuranceFloor:  25,
	},
}

var fclSchema = ModeSchema{
	Mode:          ModeFCL,
	UnitLabel:     "cntr",
	SelectByLabel: true,
	SkipRows:      2,
	Bands: []BandDef{
		{Label: "20GP"},
		{Label: "40HQ"},
		{Label: "40NOR"},
	},
	Columns: ColumnLayout{
		Origin: 0, Destination: 1, Carrier: 2, Currency: 3,
		Bands:       []int{4, 5, 6},
		TransitTime: 7, Frequency: 8, Routing: 9, Remarks: 10, ValidUntil: 11,
	},
	Currencies: []Currency{CurrencyUSD, CurrencyEUR},
	Charges: ChargeSchema{
		HandlingFee:  65,
		DocumentCode: "BL",
		DocumentDesc: "Bill of Lading Fee",
		DocumentFee:  60,

		TransferRate:  25,
		TransferFloor: 50,

		PickupSteps: []RateStep{
			{MinQty: 0, Rate: 350},
		},
		PickupFloor: 350,

		Markup: 0.15,

		InsuranceBuffer: 1.10,
		InsuranceRate:   0.0025,
		InsuranceFloor:  25,
	},
}

var lclSchema = ModeSchema{
	Mode:      ModeLCL,
	UnitLabel: "w/m",
	SkipRows:  2,
	Bands: []BandDef{
		{Label: "W/M", Threshold: 0},
	},
	Columns: ColumnLayout{
		Origin: 0, Destination: 1, Carrier: 2, Currency: 3,
		Bands:       []int{4},
		TransitTime: 5, Frequency: 6, Routing: 7, Remarks: 8, ValidUntil: 9,
	},
	Currencies: []Currency{CurrencyUSD, CurrencyEUR},
	Charges: ChargeSchema{
		HandlingFee:  35,
		DocumentCode: "BL",
		DocumentDesc: "Bill of Lading Fee",
		DocumentFee:  45,

		TransferRate:  8,
		TransferFloor: 25,

		PickupSteps: []RateStep{
			{MinQty: 10, Rate: 35},
			{MinQty: 0, Rate: 45},
		},
		PickupFloor: 120,

		Markup: 0.15,

		InsuranceBuffer: 1.10,
		InsuranceRate:   0.0025,
		InsuranceFloor:  25,
	},
}

// SchemaFor returns the schema for a mode.
func SchemaFor(mode Mode) ModeSchema {
	switch mode {
	case ModeFCL:
		return fclSchema
	case ModeLCL:
		return lclSchema
	default:
		return airSchema
	}
}
