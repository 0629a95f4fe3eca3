// Package testhelpers provides utilities for testing PocketBase-based
// applications.
package testhelpers

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"freightdesk/collections"
	"freightdesk/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary
// directory. It bootstraps the app and runs collections.Setup to
// create all tables. The temporary directory is cleaned up
// automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestRateSource creates a rate_sources record for a mode.
func CreateTestRateSource(t *testing.T, app *pocketbase.PocketBase, mode, url string, enabled bool) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("rate_sources")
	if err != nil {
		t.Fatalf("failed to find rate_sources collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("mode", mode)
	record.Set("url", url)
	record.Set("enabled", enabled)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test rate source: %v", err)
	}
	return record
}

// CreateTestQuote creates a draft quote record with a minimal valid
// breakdown.
func CreateTestQuote(t *testing.T, app *pocketbase.PocketBase, reference, mode string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("failed to find quotes collection: %v", err)
	}

	lines := []services.ChargeLine{
		{Code: "HND", Description: "Handling Fee", Quantity: 1, Unit: "flat", Rate: 45, Amount: 45},
		{Code: "FRT", Description: "Freight 100kg", Quantity: 150, Unit: "kg", Rate: 5.75, Amount: 862.5, ExpenseRate: 5, ExpenseAmount: 750},
	}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		t.Fatalf("failed to marshal test lines: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("reference", reference)
	record.Set("mode", mode)
	record.Set("origin", "Shanghai")
	record.Set("destination", "Santiago")
	record.Set("currency", "USD")
	record.Set("incoterm", "FOB")
	record.Set("band_label", "100kg")
	record.Set("chargeable_qty", 150.0)
	record.Set("total_weight_kg", 150.0)
	record.Set("total_volume_m3", 0.6)
	record.Set("piece_count", 2)
	record.Set("commodity", "General cargo")
	record.Set("lines", string(linesJSON))
	record.Set("total", 907.5)
	record.Set("status", "draft")
	record.Set("contact_name", "Test User")
	record.Set("contact_email", "test@example.com")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}
	return record
}

// SampleAirCSV is a small air rate sheet in the published layout: two
// header rows, then origin, destination, carrier, currency, five band
// columns, transit, frequency, routing, remarks, valid-until.
const SampleAirCSV = `Air Export Tariff,,,,,,,,,,,,,
Origin,Destination,Carrier,Currency,45kg,100kg,300kg,500kg,1000kg,Transit,Frequency,Routing,Remarks,Valid Until
Shanghai,Santiago,LATAM Cargo,USD,"6,50","5,00","4,20","3,80","3,40",3-5 days,Daily,PVG-SCL,,2026-12-31
Shanghai,Santiago,Qatar Airways,USD,"7,00","5,60",,"4,10","3,70",6 days,3x week,PVG-DOH-SCL,,2026-12-31
Hong Kong,Santiago,,EUR,"8,00","6,10","5,00",,,"8 days",Weekly,HKG-AMS-SCL,indirect,2026-12-31
Shenzhen,,CA,USD,"9,00",,,,,,,,row without destination,
,,,,,,,,,,,,,
`

// SampleAirRoutes parses SampleAirCSV with the air schema.
func SampleAirRoutes(t *testing.T) []services.RouteRate {
	t.Helper()

	routes, err := services.ParseRateSheet(strings.NewReader(SampleAirCSV), services.SchemaFor(services.ModeAir))
	if err != nil {
		t.Fatalf("failed to parse sample air sheet: %v", err)
	}
	return routes
}

// LoadSampleAirRates parses SampleAirCSV into a fresh store snapshot
// and returns the store.
func LoadSampleAirRates(t *testing.T) *services.RateStore {
	t.Helper()

	store := services.NewRateStore()
	store.Replace(&services.RateSnapshot{
		Mode:     services.ModeAir,
		Routes:   SampleAirRoutes(t),
		Source:   "test-fixture",
		Sequence: store.Begin(),
	})
	return store
}
