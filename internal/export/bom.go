// Package export renders treatment plans as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/RMahshie/roomtreat/internal/recommend"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names, in workbook order.
const (
	SheetBOM             = "Bill of Materials"
	SheetRecommendations = "Recommendations"
	SheetSkipped         = "Skipped"
)

// BOMHeader is the header row of the bill of materials sheet.
var BOMHeader = []string{"Item", "Dimensions", "Quantity", "Unit"}

// RecommendationHeader is the header row of the recommendations sheet.
var RecommendationHeader = []string{
	"Priority",
	"Tier",
	"Item",
	"Kind",
	"Location",
	"Quantity",
	"Width (mm)",
	"Height (mm)",
	"Min Depth (mm)",
	"Target (Hz)",
	"Achieved (Hz)",
	"Reason",
}

// SkippedHeader is the header row of the skipped devices sheet.
var SkippedHeader = []string{"Tier", "Kind", "Target (Hz)", "Reason"}

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

// BOMWorkbook renders the plan as an XLSX workbook: the merged bill of
// materials first, then the ordered recommendations, then any devices
// that could not be built.
func BOMWorkbook(plan recommend.Plan) ([]byte, error) {
	sheets := []sheet{
		{name: SheetBOM, headers: BOMHeader, widths: []float64{40, 24, 12, 10}, rows: bomRows(plan)},
		{name: SheetRecommendations, headers: RecommendationHeader, widths: []float64{10, 16, 26, 14, 24, 10, 12, 12, 14, 12, 14, 28}, rows: recommendationRows(plan)},
	}
	if len(plan.Skipped) > 0 {
		sheets = append(sheets, sheet{name: SheetSkipped, headers: SkippedHeader, widths: []float64{16, 14, 12, 60}, rows: skippedRows(plan)})
	}

	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for _, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetBOM)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to find sheet %s: %w", SheetBOM, err)
	}
	f.SetActiveSheet(index)

	// The file must stay open until WriteTo returns.
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	for col, header := range s.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(s.name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(s.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(s.name, col, col, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, row := range s.rows {
		for c, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(s.name, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s!%s: %w", s.name, cell, err)
			}
		}
	}

	return f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func bomRows(plan recommend.Plan) [][]any {
	rows := make([][]any, 0, len(plan.BOM))
	for _, e := range plan.BOM {
		rows = append(rows, []any{e.Item, blank(e.Dimensions), e.Quantity, e.Unit})
	}
	return rows
}

func recommendationRows(plan recommend.Plan) [][]any {
	rows := make([][]any, 0, len(plan.Recommendations))
	for _, r := range plan.Recommendations {
		rows = append(rows, []any{
			r.Priority,
			r.Tier.String(),
			r.Item,
			string(r.Kind),
			r.Location,
			r.Quantity,
			nonZero(r.WidthMM),
			nonZero(r.HeightMM),
			nonZero(r.MinDepthMM),
			nonZero(r.TargetFrequency),
			nonZero(r.AchievedFrequency),
			r.Rationale.Code,
		})
	}
	return rows
}

func skippedRows(plan recommend.Plan) [][]any {
	rows := make([][]any, 0, len(plan.Skipped))
	for _, s := range plan.Skipped {
		rows = append(rows, []any{s.Tier.String(), string(s.Kind), s.TargetFrequency, s.Reason})
	}
	return rows
}

// nonZero leaves unset measurements as empty cells.
func nonZero(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}

func blank(s string) any {
	if s == "" {
		return nil
	}
	return s
}
