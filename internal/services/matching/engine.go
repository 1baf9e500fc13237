package matching

import (
	"sort"
	"strings"

	pkgerrors "supplier-pricing-backend/internal/errors"
	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/tabular"
)

// Options names the columns to join and compare. Key columns are chosen per
// sheet and must have the same arity; they are matched positionally.
type Options struct {
	KeyColumnsA  []string `json:"key_columns_a"`
	KeyColumnsB  []string `json:"key_columns_b"`
	PriceColumnA string   `json:"price_column_a"`
	PriceColumnB string   `json:"price_column_b"`
}

func (o Options) validate(a, b tabular.Table) error {
	if len(o.KeyColumnsA) == 0 || len(o.KeyColumnsB) == 0 {
		return pkgerrors.NewValidationError("key_columns", nil, "at least one key column per sheet is required")
	}
	if len(o.KeyColumnsA) != len(o.KeyColumnsB) {
		return pkgerrors.NewValidationError("key_columns", [2]int{len(o.KeyColumnsA), len(o.KeyColumnsB)},
			"both sheets need the same number of key columns")
	}
	if missing := a.Missing(append(append([]string{}, o.KeyColumnsA...), o.PriceColumnA)); len(missing) > 0 {
		return pkgerrors.NewSchemaError(a.Name, missing...)
	}
	if missing := b.Missing(append(append([]string{}, o.KeyColumnsB...), o.PriceColumnB)); len(missing) > 0 {
		return pkgerrors.NewSchemaError(b.Name, missing...)
	}
	return nil
}

// entry is one sheet row reduced to its join key and price.
type entry struct {
	parts []string
	price *float64
}

// Reconcile full-outer-joins a and b on their composite keys and classifies every pair.
// Keys compare as exact strings; "TS001" and "ts001" do not match.
func Reconcile(a, b tabular.Table, opts Options) (*models.QCReport, error) {
	if err := opts.validate(a, b); err != nil {
		return nil, err
	}

	left := index(a, opts.KeyColumnsA, opts.PriceColumnA)
	right := index(b, opts.KeyColumnsB, opts.PriceColumnB)

	keys := make([]string, 0, len(left)+len(right))
	for k := range left {
		keys = append(keys, k)
	}
	for k := range right {
		if _, ok := left[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	report := &models.QCReport{KeyColumns: append([]string{}, opts.KeyColumnsA...)}
	for _, k := range keys {
		la, rb := left[k], right[k]
		if len(la) > 1 || len(rb) > 1 {
			report.DuplicateKeys = append(report.DuplicateKeys, k)
		}

		switch {
		case len(rb) == 0:
			for _, l := range la {
				report.Records = append(report.Records, record(l.parts, l.price, nil))
			}
		case len(la) == 0:
			for _, r := range rb {
				report.Records = append(report.Records, record(r.parts, nil, r.price))
			}
		default:
			for _, l := range la {
				for _, r := range rb {
					report.Records = append(report.Records, record(l.parts, l.price, r.price))
				}
			}
		}
	}
	report.Summary = models.Summarize(report.Records)
	return report, nil
}

func record(parts []string, a, b *float64) models.QCRecord {
	return models.QCRecord{Key: parts, PriceA: a, PriceB: b, Status: Classify(a, b)}
}

// Classify compares two prices at 2 decimal places.
func Classify(a, b *float64) models.QCStatus {
	switch {
	case a == nil || b == nil:
		return models.QCMissing
	case models.Equal2(*a, *b):
		return models.QCMatch
	default:
		return models.QCMismatch
	}
}

// index groups the rows of t by composite key, preserving row order.
func index(t tabular.Table, keyColumns []string, priceColumn string) map[string][]entry {
	out := make(map[string][]entry)
	for i := range t.Rows {
		parts := make([]string, len(keyColumns))
		for j, col := range keyColumns {
			parts[j] = keyValue(t, i, col)
		}
		e := entry{parts: parts}
		if v, ok := tabular.ParseNumber(t.Value(i, priceColumn)); ok {
			e.price = &v
		}
		k := strings.Join(parts, models.KeyDelimiter)
		out[k] = append(out[k], e)
	}
	return out
}

// keyValue renders a key cell verbatim. Quantity cells are normalised
// numerically so "5" and "5.0" agree.
func keyValue(t tabular.Table, i int, column string) string {
	raw := t.Raw(i, column)
	if !isQuantityColumn(column) {
		return raw
	}
	if v, ok := tabular.ParseNumber(raw); ok {
		return tabular.FormatNumber(v)
	}
	return raw
}

func isQuantityColumn(column string) bool {
	c := strings.ToLower(strings.TrimSpace(column))
	return c == "qty" || strings.Contains(c, strings.ToLower(models.ColQuantity))
}
