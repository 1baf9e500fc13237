package export

import (
	"fmt"

	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/tabular"

	"github.com/xuri/excelize/v2"
)

const (
	colorWinner   = "#90EE90"
	colorMatch    = "#90EE90"
	colorMismatch = "#FF7F7F"
	colorMissing  = "#FFF59D"
	colorHeader   = "#D9E1F2"
)

var statusColors = map[models.QCStatus]string{
	models.QCMatch:    colorMatch,
	models.QCMismatch: colorMismatch,
	models.QCMissing:  colorMissing,
}

// BidWorkbook renders the bidding sheet and fills every numeric cell that
// equals the row's winning price at 2 decimal places.
func BidWorkbook(s *tabular.Sheet) (*excelize.File, error) {
	f, err := newWorkbook(s)
	if err != nil {
		return nil, err
	}

	priceIdx := s.Index(models.ColBidPrice)
	if priceIdx < 0 {
		return f, nil
	}
	green, err := fillStyle(f, colorWinner)
	if err != nil {
		return closeOnErr(f, err)
	}
	name := f.GetSheetName(0)

	for i, row := range s.Rows {
		if priceIdx >= len(row) {
			continue
		}
		winning, ok := tabular.Numeric(row[priceIdx])
		if !ok {
			continue
		}
		for j, v := range row {
			n, ok := tabular.Numeric(v)
			if !ok || !models.Equal2(n, winning) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellStyle(name, cell, cell, green); err != nil {
				return closeOnErr(f, err)
			}
		}
	}
	return f, nil
}

// QCWorkbook renders the QC report with each row filled by its status.
func QCWorkbook(r *models.QCReport) (*excelize.File, error) {
	s := r.Sheet()
	f, err := newWorkbook(s)
	if err != nil {
		return nil, err
	}

	styles := make(map[models.QCStatus]int, len(statusColors))
	for status, color := range statusColors {
		id, err := fillStyle(f, color)
		if err != nil {
			return closeOnErr(f, err)
		}
		styles[status] = id
	}

	name := f.GetSheetName(0)
	last := len(s.Columns)
	for i, rec := range r.Records {
		id, ok := styles[rec.Status]
		if !ok {
			continue
		}
		from, _ := excelize.CoordinatesToCellName(1, i+2)
		to, _ := excelize.CoordinatesToCellName(last, i+2)
		if err := f.SetCellStyle(name, from, to, id); err != nil {
			return closeOnErr(f, err)
		}
	}
	return f, nil
}

// CatalogWorkbook renders the catalog sheet without highlighting.
func CatalogWorkbook(s *tabular.Sheet) (*excelize.File, error) {
	return newWorkbook(s)
}

// newWorkbook writes s into a single-sheet workbook named after s.Title
// with a bold header row.
func newWorkbook(s *tabular.Sheet) (*excelize.File, error) {
	f := excelize.NewFile()

	title := s.Title
	if title == "" {
		title = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", title); err != nil {
		return closeOnErr(f, fmt.Errorf("rename sheet: %w", err))
	}

	for j, col := range s.Columns {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(title, cell, col); err != nil {
			return closeOnErr(f, err)
		}
	}

	for i, row := range s.Rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(title, cell, v); err != nil {
				return closeOnErr(f, fmt.Errorf("write %s: %w", cell, err))
			}
		}
	}

	if len(s.Columns) > 0 {
		header, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeader}},
		})
		if err != nil {
			return closeOnErr(f, err)
		}
		end, _ := excelize.CoordinatesToCellName(len(s.Columns), 1)
		if err := f.SetCellStyle(title, "A1", end, header); err != nil {
			return closeOnErr(f, err)
		}
	}
	return f, nil
}

// fillStyle returns a solid fill style. Identical styles share one id.
func fillStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
}

func closeOnErr(f *excelize.File, err error) (*excelize.File, error) {
	_ = f.Close()
	return nil, err
}
