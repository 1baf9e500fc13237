package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "supplier-pricing-backend/internal/errors"
)

const (
	MinMarkup            = 0.0
	MaxMarkup            = 200.0
	DefaultBidMarkup     = 35.0
	DefaultCatalogMarkup = 0.0

	CustomerPriceBase     = "Customer Price"
	CustomerPriceTemplate = CustomerPriceBase + " (%s%%)"
)

var hundred = decimal.NewFromInt(100)

// ValidateMarkup checks a markup percentage against the accepted domain.
func ValidateMarkup(field string, v float64) error {
	if math.IsNaN(v) || v < MinMarkup || v > MaxMarkup {
		return pkgerrors.NewValidationError(field, v, fmt.Sprintf("must be between %g and %g", MinMarkup, MaxMarkup))
	}
	return nil
}

// ParseMarkup parses a user supplied percentage, snaps it to the 0.1 step and validates it.
func ParseMarkup(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, pkgerrors.NewValidationError(field, raw, "must be a number")
	}
	v = decimal.NewFromFloat(v).Round(1).InexactFloat64()
	if err := ValidateMarkup(field, v); err != nil {
		return 0, err
	}
	return v, nil
}

// ApplyMarkup returns price × (1 + markup/100) rounded half-up to a whole number.
func ApplyMarkup(price, markup float64) float64 {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(markup).Div(hundred))
	return decimal.NewFromFloat(price).Mul(factor).Round(0).InexactFloat64()
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Equal2 compares two prices after rounding both to 2 decimal places.
func Equal2(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}

// PerUnit divides total by quantity; nil when either is undefined.
func PerUnit(total *float64, quantity float64) *float64 {
	if total == nil || quantity == 0 {
		return nil
	}
	v := *total / quantity
	return &v
}

// FormatPercent renders a markup the way it appears in column labels: 35 -> "35.0", 12.5 -> "12.5".
func FormatPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

var customerPriceLabel = regexp.MustCompile(`^Customer Price \(([0-9]+(?:\.[0-9]+)?)%\)$`)

// CustomerPriceColumn is the customer price column as a (template, markup) pair.
// Markup is nil when the column came from an upload whose label carries no percentage.
type CustomerPriceColumn struct {
	Template string   `json:"template"`
	Markup   *float64 `json:"markup"`
	label    string
}

func NewCustomerPriceColumn(markup float64) CustomerPriceColumn {
	return CustomerPriceColumn{Template: CustomerPriceTemplate, Markup: &markup}
}

// ParseCustomerPriceColumn keeps an uploaded label verbatim and extracts its markup when it has one.
func ParseCustomerPriceColumn(label string) CustomerPriceColumn {
	col := CustomerPriceColumn{Template: CustomerPriceTemplate, label: label}
	if m := customerPriceLabel.FindStringSubmatch(label); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			col.Markup = &v
		}
	}
	return col
}

// Label is the column header.
func (c CustomerPriceColumn) Label() string {
	if c.label != "" {
		return c.label
	}
	if c.Markup == nil {
		return CustomerPriceBase
	}
	return fmt.Sprintf(c.Template, FormatPercent(*c.Markup))
}
