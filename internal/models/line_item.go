package models

import (
	"strings"

	"supplier-pricing-backend/internal/tabular"
)

// Supplier cost sheet columns.
const (
	ColCategory      = "Category"
	ColSKU           = "Dandpo SKU"
	ColCombinations  = "Combinations"
	ColPrinterSpec   = "Printer Specifications"
	ColQuantity      = "Quantity"
	ColSample        = "Sample"
	ColPrinterCost   = "Printer Cost"
	ColLeadTime      = "Lead Time"
	ColWeight        = "Weight in kg"
	ColPartnerName   = "Partner Name"
	KeyDelimiter     = " | "
	PartnerDelimiter = ", "
)

// KeyColumns identify a product variant. Quantity is part of the key because
// suppliers price by order volume.
var KeyColumns = []string{
	ColCategory,
	ColSKU,
	ColCombinations,
	ColPrinterSpec,
	ColQuantity,
	ColSample,
	ColLeadTime,
	ColWeight,
}

// RequiredColumns must be present in every supplier cost sheet.
var RequiredColumns = []string{
	ColCategory,
	ColSKU,
	ColCombinations,
	ColPrinterSpec,
	ColQuantity,
	ColSample,
	ColPrinterCost,
	ColLeadTime,
	ColWeight,
	ColPartnerName,
}

// NumericColumns are coerced to numbers on read; bad text becomes 0.
var NumericColumns = []string{ColQuantity, ColPrinterCost, ColLeadTime, ColWeight}

// ProductKey is the composite identity of a priced product variant.
type ProductKey string

// LineItem is one supplier's quote for one product variant.
type LineItem struct {
	Category     string  `json:"category"`
	SKU          string  `json:"sku"`
	Combinations string  `json:"combinations"`
	PrinterSpec  string  `json:"printer_specifications"`
	Quantity     float64 `json:"quantity"`
	Sample       string  `json:"sample"`
	LeadTime     float64 `json:"lead_time"`
	Weight       float64 `json:"weight_kg"`
	Partner      string  `json:"partner,omitempty"`
	Price        float64 `json:"price,omitempty"`
}

// KeyValues returns the key attributes as strings, in KeyColumns order.
func (li LineItem) KeyValues() []string {
	return []string{
		li.Category,
		li.SKU,
		li.Combinations,
		li.PrinterSpec,
		tabular.FormatNumber(li.Quantity),
		li.Sample,
		tabular.FormatNumber(li.LeadTime),
		tabular.FormatNumber(li.Weight),
	}
}

func (li LineItem) Key() ProductKey {
	return ProductKey(strings.Join(li.KeyValues(), KeyDelimiter))
}

// Participating reports whether the row is a real bid. Zero means "not bidding".
func (li LineItem) Participating() bool {
	return li.Price > 0
}

// keyCells renders the key attributes as sheet cells.
func (li LineItem) keyCells() []any {
	return []any{
		li.Category,
		li.SKU,
		li.Combinations,
		li.PrinterSpec,
		li.Quantity,
		li.Sample,
		li.LeadTime,
		li.Weight,
	}
}
