package collections

import (
	"fmt"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Published-sheet URL env vars, one per mode. A missing var seeds a
// disabled source so the mode stays visible in the admin surface.
var sourceEnvVars = map[string]string{
	"air": "RATE_SHEET_URL_AIR",
	"fcl": "RATE_SHEET_URL_FCL",
	"lcl": "RATE_SHEET_URL_LCL",
}

// SeedRateSources creates one rate_sources record per transport mode
// if none exists yet. Existing records are left alone so operator
// edits survive restarts.
func SeedRateSources(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("rate_sources")
	if err != nil {
		return fmt.Errorf("rate_sources collection missing: %w", err)
	}

	for mode, envVar := range sourceEnvVars {
		existing, err := app.FindFirstRecordByData("rate_sources", "mode", mode)
		if err == nil && existing != nil {
			continue
		}

		url := os.Getenv(envVar)
		record := core.NewRecord(col)
		record.Set("mode", mode)
		record.Set("url", url)
		record.Set("enabled", url != "")
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed rate source %q: %w", mode, err)
		}
	}
	return nil
}
