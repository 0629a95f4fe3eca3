package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"freightdesk/services"
)

// HandleRateRefresh re-downloads the mode's published sheet and swaps
// in the parsed table. No automatic retry happens anywhere else; this
// endpoint is the manual re-trigger.
func HandleRateRefresh(app *pocketbase.PocketBase, fetcher *services.SheetFetcher) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, ok := modeFromPath(e)
		if !ok {
			return nil
		}

		snap, err := fetcher.Refresh(e.Request.Context(), app, mode)
		if err != nil {
			log.Printf("rate_refresh: %s: %v", mode, err)
			return apiError(e, http.StatusBadGateway, "rate sheet refresh failed: "+err.Error())
		}

		return e.JSON(http.StatusOK, map[string]any{
			"mode":      mode,
			"routes":    len(snap.Routes),
			"source":    snap.Source,
			"loaded_at": snap.LoadedAt,
		})
	}
}

// HandleRateUpload ingests a directly uploaded rate sheet file (.csv
// or .xlsx) for a mode, bypassing the published URL.
func HandleRateUpload(app *pocketbase.PocketBase, fetcher *services.SheetFetcher) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, ok := modeFromPath(e)
		if !ok {
			return nil
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return apiError(e, http.StatusBadRequest, "multipart field 'file' is required")
		}
		defer file.Close()

		snap, err := fetcher.LoadUpload(mode, header.Filename, file)
		if err != nil {
			log.Printf("rate_upload: %s: %v", mode, err)
			return apiError(e, http.StatusUnprocessableEntity, "could not parse uploaded sheet: "+err.Error())
		}

		return e.JSON(http.StatusOK, map[string]any{
			"mode":   mode,
			"routes": len(snap.Routes),
			"source": snap.Source,
		})
	}
}
