package export

import (
	"path/filepath"
	"strings"

	pkgerrors "supplier-pricing-backend/internal/errors"
)

// Format is an output encoding for a rendered sheet.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat accepts json, csv or xlsx in any case. Empty means def.
func ParseFormat(raw string, def Format) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return def, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", pkgerrors.NewValidationError("format", raw, "must be one of json, csv, xlsx")
	}
}

// FormatForPath picks the encoding from a file extension, defaulting to CSV.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Filename returns title with the extension for f, e.g. "Bidding Sheet.xlsx".
func Filename(title string, f Format) string {
	return title + "." + string(f)
}
