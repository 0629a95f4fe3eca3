package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"freightdesk/services"
)

// HandleQuoteExportExcel streams a stored quote's breakdown as an
// .xlsx download.
func HandleQuoteExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("quotes", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "quote not found")
		}

		var lines []services.ChargeLine
		if err := json.Unmarshal([]byte(rec.GetString("lines")), &lines); err != nil {
			log.Printf("quote_export: corrupt lines on %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "stored quote breakdown is unreadable")
		}

		mode, _ := services.ParseMode(rec.GetString("mode"))
		schema := services.SchemaFor(mode)

		createdDate := "—"
		if dt := rec.GetDateTime("created"); !dt.IsZero() {
			createdDate = dt.Time().Format("02 Jan 2006")
		}

		data := services.QuoteExportData{
			Reference:     rec.GetString("reference"),
			Mode:          mode,
			Origin:        rec.GetString("origin"),
			Destination:   rec.GetString("destination"),
			Carrier:       rec.GetString("carrier"),
			Incoterm:      rec.GetString("incoterm"),
			CreatedDate:   createdDate,
			ChargeableQty: rec.GetFloat("chargeable_qty"),
			UnitLabel:     schema.UnitLabel,
			Lines:         lines,
			Total:         rec.GetFloat("total"),
			Currency:      services.Currency(rec.GetString("currency")),
		}

		fileBytes, err := services.GenerateQuoteExcel(data)
		if err != nil {
			log.Printf("quote_export: could not generate excel for %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "could not generate export")
		}

		fileName := fmt.Sprintf("%s.xlsx", rec.GetString("reference"))
		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		e.Response.Header().Set("Content-Length", fmt.Sprintf("%d", len(fileBytes)))

		_, err = e.Response.Write(fileBytes)
		return err
	}
}
