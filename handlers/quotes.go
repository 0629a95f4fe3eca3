package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/spf13/cast"

	"freightdesk/services"
	"freightdesk/tms"
)

// Advisory ceilings for air shipments. Violations block the request at
// validation time; the calculator itself accepts any dimensions.
const (
	airMaxPieceLength = 290  // cm
	airMaxPieceWidth  = 290  // cm
	airMaxPieceHeight = 160  // cm
	airMaxTotalWeight = 2000 // kg
)

// InsuranceRequest carries the optional cargo insurance toggle. The
// declared value stays a string so "enabled with empty value" can be
// told apart from an explicit zero and blocked with a message.
type InsuranceRequest struct {
	Enabled       bool   `json:"enabled"`
	DeclaredValue string `json:"declared_value"`
}

// QuoteRequest is the body of POST /api/quotes and /api/quotes/preview.
// Exactly one cargo entry style applies per mode: pieces or overall
// for air/LCL, container type+count for FCL.
type QuoteRequest struct {
	Mode        string `json:"mode"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Carrier     string `json:"carrier"`
	Currency    string `json:"currency"`
	Incoterm    string `json:"incoterm"`

	Pieces  []services.Piece  `json:"pieces"`
	Overall *services.Overall `json:"overall"`

	ContainerType  string `json:"container_type"`
	ContainerCount int    `json:"container_count"`

	Commodity string           `json:"commodity"`
	Insurance InsuranceRequest `json:"insurance"`

	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
}

// Validate checks the request shape before any computation runs.
// Failures here are inline validation errors, never 500s.
func (r QuoteRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Mode, validation.Required, validation.In("air", "fcl", "lcl")),
		validation.Field(&r.Origin, validation.Required),
		validation.Field(&r.Destination, validation.Required),
		validation.Field(&r.Incoterm, validation.Required),
		validation.Field(&r.ContactEmail, is.EmailFormat),
		validation.Field(&r.Insurance, validation.By(func(any) error {
			if r.Insurance.Enabled && strings.TrimSpace(r.Insurance.DeclaredValue) == "" {
				return errors.New("declared cargo value is required when insurance is enabled")
			}
			return nil
		})),
	)
	if err != nil {
		return err
	}

	if _, ok := services.ParseIncoterm(r.Incoterm); !ok {
		return fmt.Errorf("unknown incoterm %q", r.Incoterm)
	}

	mode, _ := services.ParseMode(r.Mode)
	switch mode {
	case services.ModeFCL:
		if r.ContainerType == "" || r.ContainerCount <= 0 {
			return errors.New("fcl quotes require container_type and a positive container_count")
		}
	default:
		if len(r.Pieces) == 0 && r.Overall == nil {
			return errors.New("either pieces or overall cargo data is required")
		}
	}

	if mode == services.ModeAir {
		return r.validateAirCeilings()
	}
	return nil
}

func (r QuoteRequest) validateAirCeilings() error {
	var totalWeight float64
	for i, p := range r.Pieces {
		if p.Length > airMaxPieceLength || p.Width > airMaxPieceWidth {
			return fmt.Errorf("piece %d exceeds the %d cm length/width limit", i+1, airMaxPieceLength)
		}
		if p.Height > airMaxPieceHeight {
			return fmt.Errorf("piece %d exceeds the %d cm height limit", i+1, airMaxPieceHeight)
		}
		n := float64(p.Quantity)
		if n <= 0 {
			n = 1
		}
		totalWeight += p.Weight * n
	}
	if r.Overall != nil {
		totalWeight += r.Overall.Weight
	}
	if totalWeight > airMaxTotalWeight {
		return fmt.Errorf("total weight exceeds the %d kg air limit, request a manual quote", airMaxTotalWeight)
	}
	return nil
}

// quoteComputation bundles everything the preview/create/submit paths
// derive from one request.
type quoteComputation struct {
	schema     services.ModeSchema
	route      services.RouteRate
	chargeable services.Chargeable
	band       services.BandSelection
	breakdown  services.Breakdown
	incoterm   services.Incoterm
	declared   float64
}

// computeQuote resolves the route, the chargeable quantity, the tariff
// band and the charge breakdown. Selection failures return a non-nil
// error response payload with the recoverable details (available
// bands, minimum quantity for the next priced tier).
func computeQuote(e *core.RequestEvent, store *services.RateStore, req QuoteRequest) (*quoteComputation, error) {
	mode, _ := services.ParseMode(req.Mode)
	schema := services.SchemaFor(mode)

	snap, ok := snapshotFor(e, store, mode)
	if !ok {
		return nil, errHandled
	}

	currency := schema.ParseCurrency(req.Currency)
	route, found := services.FindRoute(
		snap.Routes,
		services.NormalizeKey(req.Origin),
		services.NormalizeKey(req.Destination),
		strings.TrimSpace(req.Carrier),
		currency,
	)
	if !found {
		return nil, respondf(e, http.StatusNotFound,
			"no priced route from %q to %q for the selected filters; routes without published prices require a manual quote",
			req.Origin, req.Destination)
	}

	var chargeable services.Chargeable
	switch mode {
	case services.ModeFCL:
		chargeable = services.ChargeableFromContainers(req.ContainerCount)
	default:
		if req.Overall != nil {
			chargeable = services.ChargeableFromOverall(schema, *req.Overall)
		} else {
			chargeable = services.ChargeableFromPieces(schema, req.Pieces)
		}
	}

	var band *services.BandSelection
	if schema.SelectByLabel {
		band = services.SelectBandByLabel(schema, route, req.ContainerType)
		if band == nil {
			return nil, respondBandFailure(e, schema, route, chargeable.Quantity,
				fmt.Sprintf("container type %q has no published rate on this route", req.ContainerType))
		}
	} else {
		band = services.SelectBand(schema, route, chargeable.Quantity)
		if band == nil {
			return nil, respondBandFailure(e, schema, route, chargeable.Quantity,
				"no tariff band covers this chargeable quantity on the selected route")
		}
	}

	incoterm, _ := services.ParseIncoterm(req.Incoterm)
	declared := cast.ToFloat64(strings.TrimSpace(req.Insurance.DeclaredValue))

	breakdown := services.BuildCharges(schema, route, chargeable.Quantity, *band, services.ChargeOptions{
		Incoterm:         incoterm,
		InsuranceEnabled: req.Insurance.Enabled,
		DeclaredValue:    declared,
	})

	return &quoteComputation{
		schema:     schema,
		route:      route,
		chargeable: chargeable,
		band:       *band,
		breakdown:  breakdown,
		incoterm:   incoterm,
		declared:   declared,
	}, nil
}

// errHandled signals that a response has already been written.
var errHandled = errors.New("response already written")

func respondf(e *core.RequestEvent, status int, format string, args ...any) error {
	_ = apiError(e, status, fmt.Sprintf(format, args...))
	return errHandled
}

func respondBandFailure(e *core.RequestEvent, schema services.ModeSchema, route services.RouteRate, qty float64, msg string) error {
	payload := map[string]any{
		"error":           msg,
		"chargeable_qty":  qty,
		"available_bands": services.AvailableBands(schema, route),
	}
	if next, ok := services.NextPricedBand(schema, route, qty); ok {
		payload["min_qty_for_next_band"] = next.Threshold
		payload["next_band"] = next.Label
	}
	_ = e.JSON(http.StatusUnprocessableEntity, payload)
	return errHandled
}

func previewResponse(c *quoteComputation) map[string]any {
	return map[string]any{
		"mode":              c.schema.Mode,
		"origin":            c.route.Origin,
		"destination":       c.route.Destination,
		"carrier":           c.route.Carrier,
		"incoterm":          c.incoterm,
		"band":              c.band.Band.Label,
		"price_per_unit":    c.band.PricePerUnit,
		"chargeable_qty":    c.chargeable.Quantity,
		"unit":              c.schema.UnitLabel,
		"total_weight_kg":   c.chargeable.TotalWeight,
		"total_volume_m3":   c.chargeable.TotalVolume,
		"volumetric_weight": c.chargeable.VolumetricWeight,
		"lines":             c.breakdown.Lines,
		"total":             c.breakdown.Total,
		"currency":          c.breakdown.Currency,
	}
}

// HandleQuotePreview computes a breakdown without persisting anything.
func HandleQuotePreview(app *pocketbase.PocketBase, store *services.RateStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req QuoteRequest
		if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
			return apiError(e, http.StatusBadRequest, "invalid JSON body")
		}
		if err := req.Validate(); err != nil {
			return apiError(e, http.StatusBadRequest, err.Error())
		}

		c, err := computeQuote(e, store, req)
		if err != nil {
			return nil
		}
		return e.JSON(http.StatusOK, previewResponse(c))
	}
}

// HandleQuoteCreate computes a breakdown and persists it as a draft
// quote.
func HandleQuoteCreate(app *pocketbase.PocketBase, store *services.RateStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req QuoteRequest
		if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
			return apiError(e, http.StatusBadRequest, "invalid JSON body")
		}
		if err := req.Validate(); err != nil {
			return apiError(e, http.StatusBadRequest, err.Error())
		}

		c, err := computeQuote(e, store, req)
		if err != nil {
			return nil
		}

		col, err := app.FindCollectionByNameOrId("quotes")
		if err != nil {
			log.Printf("quote_create: could not find quotes collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "something went wrong, please try again")
		}

		linesJSON, err := json.Marshal(c.breakdown.Lines)
		if err != nil {
			log.Printf("quote_create: could not marshal lines: %v", err)
			return apiError(e, http.StatusInternalServerError, "something went wrong, please try again")
		}

		reference := "FQ-" + strings.ToUpper(uuid.NewString()[:8])

		record := core.NewRecord(col)
		record.Set("reference", reference)
		record.Set("mode", string(c.schema.Mode))
		record.Set("origin", c.route.Origin)
		record.Set("destination", c.route.Destination)
		record.Set("carrier", c.route.Carrier)
		record.Set("currency", string(c.breakdown.Currency))
		record.Set("incoterm", string(c.incoterm))
		record.Set("band_label", c.band.Band.Label)
		record.Set("chargeable_qty", c.chargeable.Quantity)
		record.Set("total_weight_kg", c.chargeable.TotalWeight)
		record.Set("total_volume_m3", c.chargeable.TotalVolume)
		record.Set("piece_count", c.chargeable.PieceCount)
		record.Set("commodity", req.Commodity)
		record.Set("lines", string(linesJSON))
		record.Set("total", c.breakdown.Total)
		record.Set("status", "draft")
		record.Set("contact_name", req.ContactName)
		record.Set("contact_email", req.ContactEmail)

		if err := app.Save(record); err != nil {
			log.Printf("quote_create: could not save quote: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not save quote")
		}

		resp := previewResponse(c)
		resp["id"] = record.Id
		resp["reference"] = reference
		resp["status"] = "draft"
		return e.JSON(http.StatusCreated, resp)
	}
}

// HandleQuoteList returns the quote log, newest first.
func HandleQuoteList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("quotes")
		if err != nil {
			log.Printf("quote_list: could not find quotes collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "something went wrong, please try again")
		}

		records, err := app.FindRecordsByFilter(col, "id != ''", "-created", 0, 0, nil)
		if err != nil {
			log.Printf("quote_list: could not query quotes: %v", err)
			return apiError(e, http.StatusInternalServerError, "something went wrong, please try again")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, quoteSummary(rec))
		}
		return e.JSON(http.StatusOK, map[string]any{
			"quotes": items,
			"total":  len(items),
		})
	}
}

// HandleQuoteGet returns one stored quote with its full breakdown.
func HandleQuoteGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("quotes", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "quote not found")
		}

		resp := quoteSummary(rec)
		var lines []services.ChargeLine
		if err := json.Unmarshal([]byte(rec.GetString("lines")), &lines); err == nil {
			resp["lines"] = lines
		}
		resp["commodity"] = rec.GetString("commodity")
		resp["contact_name"] = rec.GetString("contact_name")
		resp["contact_email"] = rec.GetString("contact_email")
		return e.JSON(http.StatusOK, resp)
	}
}

// HandleQuoteSubmit sends a stored draft quote to the TMS and marks it
// submitted. The payload is rebuilt from the persisted breakdown, not
// recomputed, so what was shown is what gets submitted.
func HandleQuoteSubmit(app *pocketbase.PocketBase, client *tms.Client) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if client == nil {
			return apiError(e, http.StatusServiceUnavailable, "TMS submission is not configured")
		}

		rec, err := app.FindRecordById("quotes", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "quote not found")
		}
		if rec.GetString("status") == "submitted" {
			return apiError(e, http.StatusConflict, "quote was already submitted")
		}

		var lines []services.ChargeLine
		if err := json.Unmarshal([]byte(rec.GetString("lines")), &lines); err != nil {
			log.Printf("quote_submit: corrupt lines on %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "stored quote breakdown is unreadable")
		}

		mode, _ := services.ParseMode(rec.GetString("mode"))
		schema := services.SchemaFor(mode)
		incoterm, _ := services.ParseIncoterm(rec.GetString("incoterm"))

		payload := tms.BuildQuotePayload(
			rec.GetString("reference"),
			schema,
			services.RouteRate{
				Origin:      rec.GetString("origin"),
				Destination: rec.GetString("destination"),
				Carrier:     rec.GetString("carrier"),
				Currency:    services.Currency(rec.GetString("currency")),
			},
			services.Chargeable{
				Quantity:    rec.GetFloat("chargeable_qty"),
				TotalWeight: rec.GetFloat("total_weight_kg"),
				TotalVolume: rec.GetFloat("total_volume_m3"),
				PieceCount:  int(rec.GetFloat("piece_count")),
			},
			services.Breakdown{
				Lines:    lines,
				Total:    rec.GetFloat("total"),
				Currency: services.Currency(rec.GetString("currency")),
			},
			incoterm,
			rec.GetString("commodity"),
			tms.Party{
				Name:  rec.GetString("contact_name"),
				Email: rec.GetString("contact_email"),
			},
			time.Now(),
		)

		result, err := client.CreateQuote(e.Request.Context(), payload)
		if err != nil {
			log.Printf("quote_submit: %s: %v", rec.Id, err)
			return apiError(e, http.StatusBadGateway, "quote submission failed: "+err.Error())
		}

		rec.Set("status", "submitted")
		rec.Set("tms_quote_id", result.ID)
		rec.Set("submitted_at", types.NowDateTime())
		if err := app.Save(rec); err != nil {
			log.Printf("quote_submit: could not mark %s submitted: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "quote was submitted but could not be marked locally")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"id":           rec.Id,
			"reference":    rec.GetString("reference"),
			"status":       "submitted",
			"tms_quote_id": result.ID,
		})
	}
}

func quoteSummary(rec *core.Record) map[string]any {
	return map[string]any{
		"id":             rec.Id,
		"reference":      rec.GetString("reference"),
		"mode":           rec.GetString("mode"),
		"origin":         rec.GetString("origin"),
		"destination":    rec.GetString("destination"),
		"carrier":        rec.GetString("carrier"),
		"currency":       rec.GetString("currency"),
		"incoterm":       rec.GetString("incoterm"),
		"band":           rec.GetString("band_label"),
		"chargeable_qty": rec.GetFloat("chargeable_qty"),
		"total":          rec.GetFloat("total"),
		"status":         rec.GetString("status"),
		"created":        rec.GetString("created"),
	}
}
