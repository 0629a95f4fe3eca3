// Package handlers exposes the portal's JSON API over PocketBase's
// router.
package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"freightdesk/services"
)

// apiError writes a uniform JSON error body.
func apiError(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, map[string]string{"error": message})
}

// modeFromPath resolves the {mode} path segment, writing a 400 when
// the value is not a known transport mode.
func modeFromPath(e *core.RequestEvent) (services.Mode, bool) {
	mode, ok := services.ParseMode(e.Request.PathValue("mode"))
	if !ok {
		_ = apiError(e, http.StatusBadRequest, "unknown transport mode, expected air, fcl or lcl")
	}
	return mode, ok
}

// snapshotFor fetches the current rate snapshot for a mode, writing a
// 503 when no sheet has been loaded yet.
func snapshotFor(e *core.RequestEvent, store *services.RateStore, mode services.Mode) (*services.RateSnapshot, bool) {
	snap, ok := store.Get(mode)
	if !ok {
		_ = apiError(e, http.StatusServiceUnavailable, "rate table not loaded yet, refresh the rate source first")
	}
	return snap, ok
}
