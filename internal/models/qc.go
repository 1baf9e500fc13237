package models

import (
	"strconv"

	"supplier-pricing-backend/internal/tabular"
)

type QCStatus string

const (
	QCMatch    QCStatus = "MATCH"
	QCMismatch QCStatus = "MISMATCH"
	QCMissing  QCStatus = "MISSING"

	ColPriceA   = "Price A"
	ColPriceB   = "Price B"
	ColQCStatus = "QC Status"
)

// QCRecord is one reconciled price pair.
type QCRecord struct {
	Key    []string `json:"key"`
	PriceA *float64 `json:"price_a"`
	PriceB *float64 `json:"price_b"`
	Status QCStatus `json:"status"`
}

// QCSummary counts records per status.
type QCSummary struct {
	Total         int `json:"total"`
	MatchCount    int `json:"match_count"`
	MismatchCount int `json:"mismatch_count"`
	MissingCount  int `json:"missing_count"`
}

type QCReport struct {
	KeyColumns []string   `json:"key_columns"`
	Records    []QCRecord `json:"records"`
	Summary    QCSummary  `json:"summary"`

	// DuplicateKeys lists keys that occur more than once on either side.
	// Each such key fans out into every A×B pairing.
	DuplicateKeys []string `json:"duplicate_keys,omitempty"`
}

// DisplayColumns returns the key columns with repeated names suffixed by their position.
func (r *QCReport) DisplayColumns() []string {
	seen := make(map[string]bool, len(r.KeyColumns))
	out := make([]string, 0, len(r.KeyColumns))
	for i, k := range r.KeyColumns {
		name := k
		if seen[k] {
			name = k + "_" + strconv.Itoa(i)
		}
		seen[k] = true
		out = append(out, name)
	}
	return out
}

// Sheet renders the QC grid.
func (r *QCReport) Sheet() *tabular.Sheet {
	cols := append(r.DisplayColumns(), ColPriceA, ColPriceB, ColQCStatus)
	out := &tabular.Sheet{Title: QCReportTitle, Columns: cols}
	for _, rec := range r.Records {
		row := make([]any, 0, len(cols))
		for i := range r.KeyColumns {
			var v string
			if i < len(rec.Key) {
				v = rec.Key[i]
			}
			row = append(row, v)
		}
		row = append(row, cell(rec.PriceA), cell(rec.PriceB), string(rec.Status))
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Summarize recounts the statuses of records.
func Summarize(records []QCRecord) QCSummary {
	s := QCSummary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case QCMatch:
			s.MatchCount++
		case QCMismatch:
			s.MismatchCount++
		case QCMissing:
			s.MissingCount++
		}
	}
	return s
}
