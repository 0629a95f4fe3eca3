package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"freightdesk/services"
)

// HandleOrigins returns the selectable origins for a mode.
func HandleOrigins(app *pocketbase.PocketBase, store *services.RateStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, ok := modeFromPath(e)
		if !ok {
			return nil
		}
		snap, ok := snapshotFor(e, store, mode)
		if !ok {
			return nil
		}
		return e.JSON(http.StatusOK, map[string]any{
			"mode":    mode,
			"origins": services.Origins(snap.Routes),
		})
	}
}

// HandleDestinations returns the destinations reachable from the
// origin given in the query string.
func HandleDestinations(app *pocketbase.PocketBase, store *services.RateStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, ok := modeFromPath(e)
		if !ok {
			return nil
		}
		origin := e.Request.URL.Query().Get("origin")
		if strings.TrimSpace(origin) == "" {
			return apiError(e, http.StatusBadRequest, "origin query parameter is required")
		}
		snap, ok := snapshotFor(e, store, mode)
		if !ok {
			return nil
		}
		return e.JSON(http.StatusOK, map[string]any{
			"mode":         mode,
			"origin":       origin,
			"destinations": services.DestinationsFor(snap.Routes, services.NormalizeKey(origin)),
		})
	}
}

// HandleLaneFilters returns the carriers and currencies present on a
// lane, i.e. the unfiltered defaults after an origin/destination
// change.
func HandleLaneFilters(app *pocketbase.PocketBase, store *services.RateStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, ok := modeFromPath(e)
		if !ok {
			return nil
		}
		q := e.Request.URL.Query()
		origin, destination := q.Get("origin"), q.Get("destination")
		if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
			return apiError(e, http.StatusBadRequest, "origin and destination query parameters are required")
		}
		snap, ok := snapshotFor(e, store, mode)
		if !ok {
			return nil
		}
		originKey := services.NormalizeKey(origin)
		destKey := services.NormalizeKey(destination)
		return e.JSON(http.StatusOK, map[string]any{
			"mode":       mode,
			"carriers":   services.CarriersFor(snap.Routes, originKey, destKey),
			"currencies": services.CurrenciesFor(snap.Routes, originKey, destKey),
		})
	}
}

// HandleRoutes returns the route candidates for a lane, ordered by
// comparison price, with best-price and fastest highlighting indexes.
// carriers/currencies query params narrow the candidates
// (comma-separated, empty means all).
func HandleRoutes(app *pocketbase.PocketBase, store *services.RateStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, ok := modeFromPath(e)
		if !ok {
			return nil
		}
		q := e.Request.URL.Query()
		origin, destination := q.Get("origin"), q.Get("destination")
		if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
			return apiError(e, http.StatusBadRequest, "origin and destination query parameters are required")
		}
		snap, ok := snapshotFor(e, store, mode)
		if !ok {
			return nil
		}

		filter := services.RouteFilter{}
		if raw := strings.TrimSpace(q.Get("carriers")); raw != "" {
			filter.Carriers = strings.Split(raw, ",")
		}
		if raw := strings.TrimSpace(q.Get("currencies")); raw != "" {
			schema := services.SchemaFor(mode)
			for _, c := range strings.Split(raw, ",") {
				filter.Currencies = append(filter.Currencies, schema.ParseCurrency(c))
			}
		}

		candidates := services.CandidateRoutes(
			snap.Routes,
			services.NormalizeKey(origin),
			services.NormalizeKey(destination),
			filter,
		)

		return e.JSON(http.StatusOK, map[string]any{
			"mode":             mode,
			"routes":           candidates,
			"best_price_index": services.BestPriceIndex(candidates),
			"fastest_index":    services.FastestIndex(candidates),
		})
	}
}

// HandleRateStatus reports the loaded snapshot's age, size and source
// for a mode.
func HandleRateStatus(app *pocketbase.PocketBase, store *services.RateStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, ok := modeFromPath(e)
		if !ok {
			return nil
		}
		snap, loaded := store.Get(mode)
		if !loaded {
			return e.JSON(http.StatusOK, map[string]any{
				"mode":   mode,
				"loaded": false,
			})
		}
		return e.JSON(http.StatusOK, map[string]any{
			"mode":      mode,
			"loaded":    true,
			"routes":    len(snap.Routes),
			"source":    snap.Source,
			"loaded_at": snap.LoadedAt,
		})
	}
}
