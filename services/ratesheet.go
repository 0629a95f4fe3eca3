package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RouteRate is one parsed sheet row: a priced origin/destination lane.
// Band prices live in Bands keyed by band label; a label is present
// only when the sheet published a usable (> 0) price for it.
type RouteRate struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Carrier     string `json:"carrier,omitempty"`

	// Normalized matching keys (lowercased, trimmed).
	OriginKey      string `json:"-"`
	DestinationKey string `json:"-"`

	Currency Currency           `json:"currency"`
	Bands    map[string]float64 `json:"bands"`

	TransitTime string `json:"transit_time,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	Routing     string `json:"routing,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
	ValidUntil  string `json:"valid_until,omitempty"`

	// Lowest published band price. Display/sort ranking only, never
	// used for charge computation.
	PriceForComparison float64 `json:"price_for_comparison"`
}

// NormalizeKey produces the case/whitespace-insensitive matching key
// used for origin and destination lookups.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ParsePrice extracts a float from a free-text sheet cell. Cells may
// carry currency symbols, thousands separators and comma decimal marks
// ("USD 1.234,50"). Unparsable values yield 0.
func ParsePrice(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			return r
		default:
			return -1
		}
	}, raw)
	if cleaned == "" {
		return 0
	}

	// A trailing comma followed by exactly two digits is a decimal
	// mark ("5,00" or "1.234,50"); any other comma is a thousands
	// separator.
	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	if lastComma > lastDot && len(cleaned)-lastComma-1 == 2 {
		intPart := strings.NewReplacer(".", "", ",", "").Replace(cleaned[:lastComma])
		cleaned = intPart + "." + cleaned[lastComma+1:]
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParseRateSheet parses the CSV export of a published rate sheet into
// route records. The two leading header rows are skipped and columns
// bind positionally per the schema. Rows without both origin and
// destination are skipped silently; so are short rows.
func ParseRateSheet(r io.Reader, schema ModeSchema) ([]RouteRate, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse rate sheet csv: %w", err)
	}
	return ratesFromRows(rows, schema), nil
}

// ParseRateSheetXLSX parses a directly uploaded .xlsx rate sheet,
// reading the first sheet with the same positional layout as the CSV
// export.
func ParseRateSheetXLSX(r io.Reader, schema ModeSchema) ([]RouteRate, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open rate sheet xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read rate sheet xlsx: %w", err)
	}
	return ratesFromRows(rows, schema), nil
}

func ratesFromRows(rows [][]string, schema ModeSchema) []RouteRate {
	if len(rows) <= schema.SkipRows {
		return nil
	}

	rates := make([]RouteRate, 0, len(rows)-schema.SkipRows)
	for _, row := range rows[schema.SkipRows:] {
		rate, ok := rateFromRow(row, schema)
		if !ok {
			continue
		}
		rates = append(rates, rate)
	}
	return rates
}

func rateFromRow(row []string, schema ModeSchema) (RouteRate, bool) {
	cols := schema.Columns

	origin := strings.TrimSpace(cell(row, cols.Origin))
	destination := strings.TrimSpace(cell(row, cols.Destination))
	if origin == "" || destination == "" {
		return RouteRate{}, false
	}

	rate := RouteRate{
		Origin:         origin,
		Destination:    destination,
		OriginKey:      NormalizeKey(origin),
		DestinationKey: NormalizeKey(destination),
		Carrier:        strings.TrimSpace(cell(row, cols.Carrier)),
		Currency:       schema.ParseCurrency(cell(row, cols.Currency)),
		Bands:          make(map[string]float64, len(schema.Bands)),
		TransitTime:    strings.TrimSpace(cell(row, cols.TransitTime)),
		Frequency:      strings.TrimSpace(cell(row, cols.Frequency)),
		Routing:        strings.TrimSpace(cell(row, cols.Routing)),
		Remarks:        strings.TrimSpace(cell(row, cols.Remarks)),
		ValidUntil:     strings.TrimSpace(cell(row, cols.ValidUntil)),
	}

	for i, band := range schema.Bands {
		if i >= len(cols.Bands) {
			break
		}
		price := ParsePrice(cell(row, cols.Bands[i]))
		if price <= 0 {
			continue // unpriced tier: absent, never 0
		}
		rate.Bands[band.Label] = price
		if rate.PriceForComparison == 0 || price < rate.PriceForComparison {
			rate.PriceForComparison = price
		}
	}

	return rate, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
