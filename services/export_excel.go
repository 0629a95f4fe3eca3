package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// QuoteExportData is everything the XLSX export needs, kept as plain
// serializable values so renderers stay interchangeable.
type QuoteExportData struct {
	Reference     string
	Mode          Mode
	Origin        string
	Destination   string
	Carrier       string
	Incoterm      string
	CreatedDate   string
	ChargeableQty float64
	UnitLabel     string
	Lines         []ChargeLine
	Total         float64
	Currency      Currency
}

// GenerateQuoteExcel renders a quote breakdown as an .xlsx workbook
// and returns the file bytes.
func GenerateQuoteExcel(data QuoteExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Quote"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	lastCol := columns[len(columns)-1]

	widths := []float64{8, 36, 12, 8, 14, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	lineStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create line style: %w", err)
	}

	totalLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create total label style: %w", err)
	}

	totalValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create total value style: %w", err)
	}

	// Header rows.
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", "Freight Quote "+sanitizeExcelCell(data.Reference))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	lane := fmt.Sprintf("%s → %s", data.Origin, data.Destination)
	if data.Carrier != "" {
		lane += " via " + data.Carrier
	}
	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("merge lane: %w", err)
	}
	f.SetCellValue(sheetName, "A2", sanitizeExcelCell(lane))
	f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge meta: %w", err)
	}
	meta := fmt.Sprintf("Mode: %s   Incoterm: %s   Chargeable: %.2f %s   Date: %s",
		data.Mode, data.Incoterm, data.ChargeableQty, data.UnitLabel, data.CreatedDate)
	f.SetCellValue(sheetName, "A3", meta)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// Column headers on row 5.
	headers := []string{"Code", "Description", "Qty", "Unit", "Rate", "Amount"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s5", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// Charge lines from row 6.
	row := 6
	for _, l := range data.Lines {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(l.Code))
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(l.Description))
		f.SetCellValue(sheetName, "C"+rowStr, l.Quantity)
		f.SetCellValue(sheetName, "D"+rowStr, sanitizeExcelCell(l.Unit))
		f.SetCellValue(sheetName, "E"+rowStr, FormatMoney(l.Rate, data.Currency))
		f.SetCellValue(sheetName, "F"+rowStr, FormatMoney(l.Amount, data.Currency))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, lineStyle)
		row++
	}

	// Total row after a blank spacer.
	row++
	totalRow := fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "E"+totalRow, "Total (no tax):")
	f.SetCellStyle(sheetName, "E"+totalRow, "E"+totalRow, totalLabelStyle)
	f.SetCellValue(sheetName, "F"+totalRow, FormatMoney(data.Total, data.Currency))
	f.SetCellStyle(sheetName, "F"+totalRow, "F"+totalRow, totalValueStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous
// leading characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
