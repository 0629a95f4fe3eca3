package services

import "testing"

func buildAirBreakdown(t *testing.T, qty float64, opts ChargeOptions) Breakdown {
	t.Helper()
	schema := SchemaFor(ModeAir)
	route := airRoute(map[string]float64{"45kg": 6.50, "100kg": 5.00, "500kg": 3.80})
	sel := SelectBand(schema, route, qty)
	if sel == nil {
		t.Fatalf("no band for qty %v", qty)
	}
	return BuildCharges(schema, route, qty, *sel, opts)
}

func lineByCode(t *testing.T, b Breakdown, code string) ChargeLine {
	t.Helper()
	for _, l := range b.Lines {
		if l.Code == code {
			return l
		}
	}
	t.Fatalf("no %s line in %+v", code, b.Lines)
	return ChargeLine{}
}

func TestBuildChargesAirEndToEnd(t *testing.T) {
	// 150 kg on a 100kg tier at 5.00/kg: freight income is
	// 150 x 5.00 x 1.15 = 862.50, and with handling 45, AWB 30 and the
	// 50 transfer minimum the tax-free total is 987.50.
	b := buildAirBreakdown(t, 150, ChargeOptions{Incoterm: IncotermFOB})

	wantCodes := []string{ChargeCodeHandling, "AWB", ChargeCodeTransfer, ChargeCodeFreight}
	if len(b.Lines) != len(wantCodes) {
		t.Fatalf("got %d lines, want %d: %+v", len(b.Lines), len(wantCodes), b.Lines)
	}
	for i, code := range wantCodes {
		if b.Lines[i].Code != code {
			t.Errorf("line %d code = %s, want %s", i, b.Lines[i].Code, code)
		}
	}

	frt := lineByCode(t, b, ChargeCodeFreight)
	if !almostEqual(frt.Amount, 862.50) {
		t.Errorf("freight amount = %v, want 862.50", frt.Amount)
	}
	if !almostEqual(frt.ExpenseAmount, 750) {
		t.Errorf("freight expense = %v, want 750", frt.ExpenseAmount)
	}
	if frt.Description != "Freight 100kg" {
		t.Errorf("freight description = %q", frt.Description)
	}

	trf := lineByCode(t, b, ChargeCodeTransfer)
	if !almostEqual(trf.Amount, 50) {
		t.Errorf("transfer amount = %v, want floor 50", trf.Amount)
	}

	if !almostEqual(b.Total, 987.50) {
		t.Errorf("total = %v, want 987.50", b.Total)
	}
	if b.Currency != CurrencyUSD {
		t.Errorf("currency = %s, want USD", b.Currency)
	}
}

func TestBuildChargesMarkupRoundTrip(t *testing.T) {
	b := buildAirBreakdown(t, 600, ChargeOptions{Incoterm: IncotermCIF})
	frt := lineByCode(t, b, ChargeCodeFreight)

	if !almostEqual(frt.Rate, frt.ExpenseRate*1.15) {
		t.Errorf("income rate %v is not expense rate %v x 1.15", frt.Rate, frt.ExpenseRate)
	}
	if !almostEqual(frt.Amount, frt.ExpenseAmount*1.15) {
		t.Errorf("income amount %v is not expense amount %v x 1.15", frt.Amount, frt.ExpenseAmount)
	}
}

func TestBuildChargesEXWPickup(t *testing.T) {
	tests := []struct {
		name       string
		qty        float64
		wantRate   float64
		wantAmount float64
	}{
		{"small shipment hits floor", 150, 0.80, 190},
		{"mid step", 300, 0.75, 225},
		{"large shipment cheapest step", 1200, 0.60, 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := buildAirBreakdown(t, tt.qty, ChargeOptions{Incoterm: IncotermEXW})
			exw := lineByCode(t, b, ChargeCodePickup)
			if !almostEqual(exw.Rate, tt.wantRate) || !almostEqual(exw.Amount, tt.wantAmount) {
				t.Errorf("EXW line = rate %v amount %v, want rate %v amount %v",
					exw.Rate, exw.Amount, tt.wantRate, tt.wantAmount)
			}
		})
	}

	// Non-EXW terms carry no pickup line.
	b := buildAirBreakdown(t, 150, ChargeOptions{Incoterm: IncotermFOB})
	for _, l := range b.Lines {
		if l.Code == ChargeCodePickup {
			t.Fatal("FOB breakdown contains a pickup line")
		}
	}
}

func TestBuildChargesInsurance(t *testing.T) {
	base := buildAirBreakdown(t, 150, ChargeOptions{Incoterm: IncotermFOB})

	tests := []struct {
		name        string
		opts        ChargeOptions
		wantLine    bool
		wantPremium float64
	}{
		{
			name: "disabled",
			opts: ChargeOptions{Incoterm: IncotermFOB},
		},
		{
			name: "enabled with zero value adds nothing",
			opts: ChargeOptions{Incoterm: IncotermFOB, InsuranceEnabled: true},
		},
		{
			name:     "small value hits the 25 minimum",
			opts:     ChargeOptions{Incoterm: IncotermFOB, InsuranceEnabled: true, DeclaredValue: 1000},
			wantLine: true, wantPremium: 25,
		},
		{
			// (50000 + 987.50) x 1.10 x 0.0025 = 140.215625
			name:     "large value computed premium",
			opts:     ChargeOptions{Incoterm: IncotermFOB, InsuranceEnabled: true, DeclaredValue: 50000},
			wantLine: true, wantPremium: 140.215625,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := buildAirBreakdown(t, 150, tt.opts)
			if !tt.wantLine {
				if len(b.Lines) != len(base.Lines) || !almostEqual(b.Total, base.Total) {
					t.Fatalf("unexpected insurance contribution: %+v", b)
				}
				return
			}
			ins := lineByCode(t, b, ChargeCodeInsurance)
			if !almostEqual(ins.Amount, tt.wantPremium) {
				t.Errorf("premium = %v, want %v", ins.Amount, tt.wantPremium)
			}
			if !almostEqual(b.Total, base.Total+tt.wantPremium) {
				t.Errorf("total = %v, want %v", b.Total, base.Total+tt.wantPremium)
			}
		})
	}
}

func TestBuildChargesFCLFlatPickup(t *testing.T) {
	schema := SchemaFor(ModeFCL)
	route := RouteRate{Currency: CurrencyUSD, Bands: map[string]float64{"40HQ": 2400}}
	sel := SelectBandByLabel(schema, route, "40HQ")
	if sel == nil {
		t.Fatal("no 40HQ selection")
	}

	b := BuildCharges(schema, route, 2, *sel, ChargeOptions{Incoterm: IncotermEXW})

	exw := lineByCode(t, b, ChargeCodePickup)
	if !almostEqual(exw.Amount, 700) {
		t.Errorf("FCL pickup for 2 containers = %v, want 700", exw.Amount)
	}
	frt := lineByCode(t, b, ChargeCodeFreight)
	if !almostEqual(frt.Amount, 2*2400*1.15) {
		t.Errorf("FCL freight = %v, want %v", frt.Amount, 2*2400*1.15)
	}
	// Handling 65 + BL 60 + transfer max(2x25, 50)=50.
	if !almostEqual(b.Total, 65+700+60+50+5520) {
		t.Errorf("FCL total = %v", b.Total)
	}
}

func TestFlooredLineIdempotentAboveFloor(t *testing.T) {
	l := flooredLine(ChargeCodeTransfer, "Local Transfer Fee", 600, "kg", 0.15, 50)
	if !almostEqual(l.Amount, 90) {
		t.Errorf("amount = %v, want 90", l.Amount)
	}
	again := flooredLine(ChargeCodeTransfer, "Local Transfer Fee", 600, "kg", 0.15, 50)
	if l != again {
		t.Errorf("floored line is not deterministic: %+v vs %+v", l, again)
	}
}

func TestSteppedRate(t *testing.T) {
	steps := []RateStep{{MinQty: 1000, Rate: 0.60}, {MinQty: 500, Rate: 0.65}, {MinQty: 250, Rate: 0.75}, {MinQty: 0, Rate: 0.80}}

	tests := []struct {
		qty  float64
		want float64
	}{
		{0, 0.80},
		{249.9, 0.80},
		{250, 0.75},
		{500, 0.65},
		{999, 0.65},
		{1000, 0.60},
		{5000, 0.60},
	}
	for _, tt := range tests {
		if got := steppedRate(steps, tt.qty); got != tt.want {
			t.Errorf("steppedRate(%v) = %v, want %v", tt.qty, got, tt.want)
		}
	}

	if got := steppedRate(nil, 100); got != 0 {
		t.Errorf("steppedRate(nil) = %v, want 0", got)
	}
}
