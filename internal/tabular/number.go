package tabular

import (
	"math"
	"strconv"
	"strings"

	pkgerrors "supplier-pricing-backend/internal/errors"
)

// ParseNumber parses a numeric cell. Blank, NaN and infinite values are not numbers.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatNumber renders v in its shortest decimal form ("1", "0.2", "33.75").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Coercer turns numeric cells into float64, treating anything unparseable as 0.
// Non-blank cells that fail to parse are kept as warnings.
type Coercer struct {
	Source   string
	Warnings []*pkgerrors.ParseError
}

func NewCoercer(source string) *Coercer {
	return &Coercer{Source: source}
}

// Number coerces raw; row is 1-based for reporting.
func (c *Coercer) Number(row int, column, raw string) float64 {
	v, ok := ParseNumber(raw)
	if ok {
		return v
	}
	if strings.TrimSpace(raw) != "" {
		c.Warnings = append(c.Warnings, &pkgerrors.ParseError{
			Source: c.Source,
			Row:    row,
			Column: column,
			Value:  raw,
		})
	}
	return 0
}
