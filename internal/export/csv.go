package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"supplier-pricing-backend/internal/tabular"
)

// WriteCSV writes the header and every row of s. Missing cells are written empty.
func WriteCSV(w io.Writer, s *tabular.Sheet) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(s.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(s.Columns))
	for i, row := range s.Rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = tabular.FormatCell(row[j])
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
