package services

import (
	"reflect"
	"strings"
	"testing"
)

func testRoutes(t *testing.T) []RouteRate {
	t.Helper()
	routes, err := ParseRateSheet(strings.NewReader(testAirCSV), SchemaFor(ModeAir))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return routes
}

func TestOrigins(t *testing.T) {
	got := Origins(testRoutes(t))
	want := []string{"Ningbo", "Shanghai", "hong kong"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Origins = %v, want %v", got, want)
	}
}

func TestDestinationsFor(t *testing.T) {
	routes := testRoutes(t)

	got := DestinationsFor(routes, "shanghai")
	if !reflect.DeepEqual(got, []string{"Santiago"}) {
		t.Errorf("DestinationsFor(shanghai) = %v", got)
	}

	if got := DestinationsFor(routes, "nowhere"); len(got) != 0 {
		t.Errorf("expected no destinations for unknown origin, got %v", got)
	}
}

func TestCarriersAndCurrenciesFor(t *testing.T) {
	routes := testRoutes(t)

	carriers := CarriersFor(routes, "shanghai", "santiago")
	want := []string{"LATAM Cargo", "Qatar Airways"}
	if !reflect.DeepEqual(carriers, want) {
		t.Errorf("CarriersFor = %v, want %v", carriers, want)
	}

	// The carrier-less Hong Kong route contributes no carrier.
	if got := CarriersFor(routes, "hong kong", "santiago"); len(got) != 0 {
		t.Errorf("expected no carriers, got %v", got)
	}

	currencies := CurrenciesFor(routes, "hong kong", "santiago")
	if !reflect.DeepEqual(currencies, []Currency{CurrencyEUR}) {
		t.Errorf("CurrenciesFor = %v", currencies)
	}
}

func TestCandidateRoutes(t *testing.T) {
	routes := testRoutes(t)

	t.Run("no filter returns all lane routes sorted by price", func(t *testing.T) {
		got := CandidateRoutes(routes, "shanghai", "santiago", RouteFilter{})
		if len(got) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(got))
		}
		// LATAM comparison price 3.40 < Qatar 3.70.
		if got[0].Carrier != "LATAM Cargo" || got[1].Carrier != "Qatar Airways" {
			t.Errorf("unexpected order: %s, %s", got[0].Carrier, got[1].Carrier)
		}
	})

	t.Run("carrier filter is case-insensitive", func(t *testing.T) {
		got := CandidateRoutes(routes, "shanghai", "santiago", RouteFilter{
			Carriers: []string{"qatar airways"},
		})
		if len(got) != 1 || got[0].Carrier != "Qatar Airways" {
			t.Errorf("unexpected candidates %v", got)
		}
	})

	t.Run("carrier-less routes match any carrier filter", func(t *testing.T) {
		got := CandidateRoutes(routes, "hong kong", "santiago", RouteFilter{
			Carriers: []string{"LATAM Cargo"},
		})
		if len(got) != 1 {
			t.Errorf("expected the carrier-less route to pass, got %d", len(got))
		}
	})

	t.Run("currency filter", func(t *testing.T) {
		got := CandidateRoutes(routes, "hong kong", "santiago", RouteFilter{
			Currencies: []Currency{CurrencyUSD},
		})
		if len(got) != 0 {
			t.Errorf("expected EUR route excluded, got %d", len(got))
		}
	})

	t.Run("unpriced routes sort first", func(t *testing.T) {
		got := CandidateRoutes(routes, "ningbo", "santiago", RouteFilter{})
		if len(got) != 1 || got[0].PriceForComparison != 0 {
			t.Fatalf("unexpected candidates %v", got)
		}
	})
}

func TestBestPriceIndex(t *testing.T) {
	tests := []struct {
		name       string
		candidates []RouteRate
		expect     int
	}{
		{
			name: "lowest positive price wins",
			candidates: []RouteRate{
				{PriceForComparison: 5},
				{PriceForComparison: 3},
				{PriceForComparison: 4},
			},
			expect: 1,
		},
		{
			name: "zero-price routes never win",
			candidates: []RouteRate{
				{PriceForComparison: 0},
				{PriceForComparison: 9},
			},
			expect: 1,
		},
		{
			name: "all unpriced",
			candidates: []RouteRate{
				{PriceForComparison: 0},
				{PriceForComparison: 0},
			},
			expect: -1,
		},
		{
			name: "tie keeps first occurrence",
			candidates: []RouteRate{
				{PriceForComparison: 4},
				{PriceForComparison: 4},
			},
			expect: 0,
		},
		{name: "empty", candidates: nil, expect: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestPriceIndex(tt.candidates); got != tt.expect {
				t.Errorf("BestPriceIndex = %d, want %d", got, tt.expect)
			}
		})
	}
}

func TestFastestIndex(t *testing.T) {
	tests := []struct {
		name       string
		candidates []RouteRate
		expect     int
	}{
		{
			name: "first integer substring decides",
			candidates: []RouteRate{
				{TransitTime: "6 days"},
				{TransitTime: "3-5 days"},
				{TransitTime: "8 days"},
			},
			expect: 1,
		},
		{
			name: "non-numeric transit times are skipped",
			candidates: []RouteRate{
				{TransitTime: "on request"},
				{TransitTime: "10 days"},
			},
			expect: 1,
		},
		{
			name: "nothing numeric",
			candidates: []RouteRate{
				{TransitTime: ""},
				{TransitTime: "tbd"},
			},
			expect: -1,
		},
		{
			name: "tie keeps first occurrence",
			candidates: []RouteRate{
				{TransitTime: "5 days"},
				{TransitTime: "5 days"},
			},
			expect: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FastestIndex(tt.candidates); got != tt.expect {
				t.Errorf("FastestIndex = %d, want %d", got, tt.expect)
			}
		})
	}
}

func TestFindRoute(t *testing.T) {
	routes := testRoutes(t)

	t.Run("cheapest priced candidate without carrier", func(t *testing.T) {
		route, ok := FindRoute(routes, "shanghai", "santiago", "", CurrencyUSD)
		if !ok {
			t.Fatal("expected a route")
		}
		if route.Carrier != "LATAM Cargo" {
			t.Errorf("expected cheapest route, got %q", route.Carrier)
		}
	})

	t.Run("specific carrier", func(t *testing.T) {
		route, ok := FindRoute(routes, "shanghai", "santiago", "Qatar Airways", CurrencyUSD)
		if !ok || route.Carrier != "Qatar Airways" {
			t.Errorf("expected Qatar Airways, got %v %v", route.Carrier, ok)
		}
	})

	t.Run("fully unpriced routes are never found", func(t *testing.T) {
		if _, ok := FindRoute(routes, "ningbo", "santiago", "", CurrencyUSD); ok {
			t.Error("expected no route for a lane with only unpriced rows")
		}
	})
}
