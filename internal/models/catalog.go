package models

import (
	"strings"

	"supplier-pricing-backend/internal/tabular"
)

// Catalog sheet columns.
const (
	ColCatalogPrinterCost  = "Printer Cost"
	ColUnitPrinterCost     = "Unit Price for Printer cost"
	ColUnitCustomerCost    = "Unit Price for customer cost"
	ColPartners            = "Partners"
	ColProductionType      = "Production Type"
	ColProductionTime      = "Production Time (Hours)"
	ColPrinterDelivery     = "Printer Delivery to Dandpo (Hours)"
	ColPackagingDimensions = "Packaging Dimensions"
	ColProductDimensions   = "Product Dimensions"
)

// PlaceholderColumns are left blank for manual fill-in downstream.
var PlaceholderColumns = []string{
	ColProductionType,
	ColProductionTime,
	ColPrinterDelivery,
	ColPackagingDimensions,
	ColProductDimensions,
}

// CatalogColumns is the fixed catalog layout with the generic customer price label.
var CatalogColumns = append(append(append([]string{}, KeyColumns...),
	ColCatalogPrinterCost, CustomerPriceBase, ColUnitPrinterCost, ColUnitCustomerCost, ColPartners),
	PlaceholderColumns...)

type CatalogRecord struct {
	Item             LineItem `json:"item"`
	PrinterCost      *float64 `json:"printer_cost"`
	CustomerPrice    *float64 `json:"customer_price"`
	UnitPrinterCost  *float64 `json:"unit_printer_cost"`
	UnitCustomerCost *float64 `json:"unit_customer_cost"`
	Partners         []string `json:"partners"`
}

// PartnersLabel joins partner names for display.
func (r CatalogRecord) PartnersLabel() string {
	return strings.Join(r.Partners, PartnerDelimiter)
}

type CatalogSheet struct {
	PriceColumn CustomerPriceColumn `json:"price_column"`
	Records     []CatalogRecord     `json:"records"`
}

// Columns returns the catalog layout with the current customer price label.
func (s *CatalogSheet) Columns() []string {
	cols := append([]string{}, CatalogColumns...)
	for i, c := range cols {
		if c == CustomerPriceBase {
			cols[i] = s.PriceColumn.Label()
		}
	}
	return cols
}

// Sheet renders the catalog grid; placeholder columns are empty strings.
func (s *CatalogSheet) Sheet() *tabular.Sheet {
	out := &tabular.Sheet{Title: CatalogSheetTitle, Columns: s.Columns()}
	for _, r := range s.Records {
		row := r.Item.keyCells()
		row = append(row,
			cell(r.PrinterCost),
			cell(r.CustomerPrice),
			cell(r.UnitPrinterCost),
			cell(r.UnitCustomerCost),
			r.PartnersLabel(),
		)
		for range PlaceholderColumns {
			row = append(row, "")
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
