package services

// ChargeLine is one row of the quote breakdown. Amount equals
// Quantity x Rate for variable lines; flat fees carry Quantity 1.
// Freight additionally records the pre-markup expense basis for
// margin reporting.
type ChargeLine struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`

	ExpenseRate   float64 `json:"expense_rate,omitempty"`
	ExpenseAmount float64 `json:"expense_amount,omitempty"`
}

// Breakdown is the full computed quote: the ordered lines plus their
// tax-free total in the route currency.
type Breakdown struct {
	Lines    []ChargeLine `json:"lines"`
	Total    float64      `json:"total"`
	Currency Currency     `json:"currency"`
}

// ChargeOptions carries the caller-side knobs of a breakdown.
// DeclaredValue is the cargo value for insurance; it only matters when
// InsuranceEnabled is set. Enabled insurance with a zero value
// contributes nothing -- blocking that submission is the caller's
// validation concern, not a computation error.
type ChargeOptions struct {
	Incoterm         Incoterm
	InsuranceEnabled bool
	DeclaredValue    float64
}

// Line codes, fixed across modes.
const (
	ChargeCodeHandling  = "HND"
	ChargeCodePickup    = "EXW"
	ChargeCodeTransfer  = "TRF"
	ChargeCodeFreight   = "FRT"
	ChargeCodeInsurance = "INS"
)

// BuildCharges composes the fixed line sequence for a selected route
// and band: handling, optional origin pickup, document fee, local
// transfer, marked-up freight and optional insurance. Every per-unit
// line references the same chargeable quantity; no tax is applied.
func BuildCharges(schema ModeSchema, route RouteRate, qty float64, band BandSelection, opts ChargeOptions) Breakdown {
	cs := schema.Charges
	unit := schema.UnitLabel
	var lines []ChargeLine

	lines = append(lines, flatLine(ChargeCodeHandling, "Handling Fee", cs.HandlingFee))

	if opts.Incoterm.RequiresOriginPickup() {
		rate := steppedRate(cs.PickupSteps, qty)
		lines = append(lines, flooredLine(ChargeCodePickup, "EXW Charges", qty, unit, rate, cs.PickupFloor))
	}

	lines = append(lines, flatLine(cs.DocumentCode, cs.DocumentDesc, cs.DocumentFee))

	lines = append(lines, flooredLine(ChargeCodeTransfer, "Local Transfer Fee", qty, unit, cs.TransferRate, cs.TransferFloor))

	expenseRate := band.PricePerUnit
	incomeRate := expenseRate * (1 + cs.Markup)
	lines = append(lines, ChargeLine{
		Code:          ChargeCodeFreight,
		Description:   "Freight " + band.Band.Label,
		Quantity:      qty,
		Unit:          unit,
		Rate:          incomeRate,
		Amount:        qty * incomeRate,
		ExpenseRate:   expenseRate,
		ExpenseAmount: qty * expenseRate,
	})

	var total float64
	for _, l := range lines {
		total += l.Amount
	}

	if opts.InsuranceEnabled && opts.DeclaredValue > 0 {
		premium := (opts.DeclaredValue + total) * cs.InsuranceBuffer * cs.InsuranceRate
		if premium < cs.InsuranceFloor {
			premium = cs.InsuranceFloor
		}
		lines = append(lines, ChargeLine{
			Code:        ChargeCodeInsurance,
			Description: "Cargo Insurance",
			Quantity:    1,
			Unit:        "flat",
			Rate:        premium,
			Amount:      premium,
		})
		total += premium
	}

	return Breakdown{Lines: lines, Total: total, Currency: route.Currency}
}

func flatLine(code, desc string, fee float64) ChargeLine {
	return ChargeLine{
		Code:        code,
		Description: desc,
		Quantity:    1,
		Unit:        "flat",
		Rate:        fee,
		Amount:      fee,
	}
}

// flooredLine builds a per-unit line with a minimum charge:
// amount = max(qty x rate, floor).
func flooredLine(code, desc string, qty float64, unit string, rate, floor float64) ChargeLine {
	amount := qty * rate
	if amount < floor {
		amount = floor
	}
	return ChargeLine{
		Code:        code,
		Description: desc,
		Quantity:    qty,
		Unit:        unit,
		Rate:        rate,
		Amount:      amount,
	}
}

// steppedRate resolves a stepped per-unit rate: the first step whose
// MinQty the quantity reaches. Steps are ordered descending.
func steppedRate(steps []RateStep, qty float64) float64 {
	for _, s := range steps {
		if qty >= s.MinQty {
			return s.Rate
		}
	}
	if len(steps) > 0 {
		return steps[len(steps)-1].Rate
	}
	return 0
}
