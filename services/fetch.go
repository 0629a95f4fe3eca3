package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// SheetFetcher downloads published rate sheets and swaps the parsed
// tables into the RateStore. One fetcher is shared by the refresh
// endpoint, the cron job and the ratesync CLI command.
type SheetFetcher struct {
	store  *RateStore
	client *http.Client
}

func NewSheetFetcher(store *RateStore) *SheetFetcher {
	return &SheetFetcher{
		store: store,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Refresh downloads the mode's configured sheet, parses it and
// replaces the in-memory snapshot. Refresh metadata (row count, error,
// timestamp) is written back to the rate_sources record either way.
// Malformed rows are skipped during parsing, never reported.
func (f *SheetFetcher) Refresh(ctx context.Context, app *pocketbase.PocketBase, mode Mode) (*RateSnapshot, error) {
	source, err := app.FindFirstRecordByData("rate_sources", "mode", string(mode))
	if err != nil {
		return nil, fmt.Errorf("no rate source configured for mode %q: %w", mode, err)
	}
	if !source.GetBool("enabled") {
		return nil, fmt.Errorf("rate source for mode %q is disabled", mode)
	}
	url := source.GetString("url")
	if url == "" {
		return nil, fmt.Errorf("rate source for mode %q has no sheet url", mode)
	}

	seq := f.store.Begin()

	snap, err := f.download(ctx, mode, url, seq)
	f.recordRefresh(app, source, snap, err)
	if err != nil {
		return nil, err
	}

	if !f.store.Replace(snap) {
		// A refresh that started after this one already published.
		log.Printf("ratesync: discarding superseded %s load (seq %d)", mode, seq)
		return f.currentOr(snap), nil
	}
	return snap, nil
}

// RefreshAll refreshes every enabled source, logging failures per mode
// instead of aborting the sweep.
func (f *SheetFetcher) RefreshAll(ctx context.Context, app *pocketbase.PocketBase) {
	for _, mode := range []Mode{ModeAir, ModeFCL, ModeLCL} {
		snap, err := f.Refresh(ctx, app, mode)
		if err != nil {
			log.Printf("ratesync: %s refresh failed: %v", mode, err)
			continue
		}
		log.Printf("ratesync: %s loaded %d routes from %s", mode, len(snap.Routes), snap.Source)
	}
}

// LoadUpload parses a directly uploaded sheet (CSV or XLSX by file
// name) and publishes it with the same sequencing as a download.
func (f *SheetFetcher) LoadUpload(mode Mode, fileName string, r io.Reader) (*RateSnapshot, error) {
	schema := SchemaFor(mode)
	seq := f.store.Begin()

	var routes []RouteRate
	var err error
	if isXLSX(fileName) {
		routes, err = ParseRateSheetXLSX(r, schema)
	} else {
		routes, err = ParseRateSheet(r, schema)
	}
	if err != nil {
		return nil, err
	}

	snap := &RateSnapshot{
		Mode:     mode,
		Routes:   routes,
		Source:   "upload:" + fileName,
		LoadedAt: time.Now().UTC(),
		Sequence: seq,
	}
	if !f.store.Replace(snap) {
		return f.currentOr(snap), nil
	}
	return snap, nil
}

func (f *SheetFetcher) download(ctx context.Context, mode Mode, url string, seq uint64) (*RateSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download rate sheet %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download rate sheet %s: status %d", url, resp.StatusCode)
	}

	routes, err := ParseRateSheet(resp.Body, SchemaFor(mode))
	if err != nil {
		return nil, err
	}

	return &RateSnapshot{
		Mode:     mode,
		Routes:   routes,
		Source:   url,
		LoadedAt: time.Now().UTC(),
		Sequence: seq,
	}, nil
}

func (f *SheetFetcher) recordRefresh(app *pocketbase.PocketBase, source *core.Record, snap *RateSnapshot, refreshErr error) {
	source.Set("last_refreshed_at", types.NowDateTime())
	if refreshErr != nil {
		source.Set("last_error", refreshErr.Error())
	} else {
		source.Set("last_error", "")
		source.Set("last_row_count", len(snap.Routes))
	}
	if err := app.Save(source); err != nil {
		log.Printf("ratesync: could not persist refresh metadata for %s: %v", source.GetString("mode"), err)
	}
}

func (f *SheetFetcher) currentOr(snap *RateSnapshot) *RateSnapshot {
	if current, ok := f.store.Get(snap.Mode); ok {
		return current
	}
	return snap
}

func isXLSX(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx")
}
