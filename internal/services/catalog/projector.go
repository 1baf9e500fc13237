package catalog

import (
	"strings"

	pkgerrors "supplier-pricing-backend/internal/errors"
	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/tabular"
)

// RequiredColumns must be present in an uploaded bidding sheet.
var RequiredColumns = append(append([]string{}, models.KeyColumns...), models.ColBidPrice)

// Project maps a bidding sheet onto the catalog layout. A positive override
// re-derives every customer price from Printer Cost and relabels the column;
// zero keeps the upstream customer price column untouched.
func Project(sheet *models.BidSheet, override float64) (*models.CatalogSheet, error) {
	if sheet == nil {
		return nil, pkgerrors.NewValidationError("sheet", nil, "bidding sheet is required")
	}
	if err := models.ValidateMarkup("markup", override); err != nil {
		return nil, err
	}

	col := models.CustomerPriceColumn{Template: models.CustomerPriceTemplate}
	fallback := sheet.PriceColumn == nil
	if !fallback {
		col = *sheet.PriceColumn
	}
	recompute := override > 0
	if recompute {
		col = models.NewCustomerPriceColumn(override)
	}

	out := &models.CatalogSheet{PriceColumn: col, Records: make([]models.CatalogRecord, 0, len(sheet.Records))}
	for _, r := range sheet.Records {
		qty := r.Item.Quantity
		rec := models.CatalogRecord{
			Item:        r.Item,
			PrinterCost: r.WinningPrice,
			Partners:    partners(sheet.Partners, r),
		}
		rec.Item.Partner, rec.Item.Price = "", 0

		rec.CustomerPrice = r.CustomerPrice
		if fallback {
			rec.CustomerPrice = r.WinningPrice
		}

		if sheet.HasUnitPrice {
			rec.UnitPrinterCost = round2(r.UnitPrice)
		} else {
			rec.UnitPrinterCost = round2(models.PerUnit(rec.PrinterCost, qty))
		}
		if sheet.HasCustomerUnitPrice {
			rec.UnitCustomerCost = round2(r.CustomerUnitPrice)
		} else {
			rec.UnitCustomerCost = round2(models.PerUnit(rec.CustomerPrice, qty))
		}

		if recompute {
			rec.CustomerPrice = nil
			if rec.PrinterCost != nil {
				v := models.ApplyMarkup(*rec.PrinterCost, override)
				rec.CustomerPrice = &v
			}
			rec.UnitCustomerCost = round2(models.PerUnit(rec.CustomerPrice, qty))
		}

		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// partners lists, in column order, every supplier column holding a value for r.
// The winner's own column is included.
func partners(columns []string, r models.BidRecord) []string {
	var out []string
	for _, p := range columns {
		if _, ok := r.PriceFor(p); ok {
			out = append(out, p)
		}
	}
	return out
}

func round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := models.Round2(*v)
	return &r
}

// FromTable decodes a previously exported bidding sheet. Numeric cells that are
// blank or unparseable read as 0; supplier columns are every column that is not
// part of the bidding or catalog layout.
func FromTable(t tabular.Table) (*models.BidSheet, error) {
	if missing := t.Missing(RequiredColumns); len(missing) > 0 {
		return nil, pkgerrors.NewSchemaError(t.Name, missing...)
	}

	sheet := &models.BidSheet{
		HasUnitPrice:         t.Has(models.ColBidUnitPrice),
		HasCustomerUnitPrice: t.Has(models.ColCustomerUnitPrice),
	}
	priceCols := t.ColumnsContaining(models.CustomerPriceBase)
	if len(priceCols) > 0 {
		col := models.ParseCustomerPriceColumn(priceCols[0])
		sheet.PriceColumn = &col
	}

	reserved := make(map[string]bool)
	for _, group := range [][]string{models.CatalogColumns, models.KeyColumns, priceCols, {
		models.ColBidPartners, models.ColBidPrice, models.ColBidUnitPrice, models.ColCustomerUnitPrice,
	}} {
		for _, c := range group {
			reserved[c] = true
		}
	}
	for _, c := range t.Columns {
		if !reserved[c] {
			sheet.Partners = append(sheet.Partners, c)
		}
	}

	c := tabular.NewCoercer(t.Name)
	num := func(i int, column string) *float64 {
		v := c.Number(i+1, column, t.Value(i, column))
		return &v
	}
	for i := range t.Rows {
		rec := models.BidRecord{
			Item: models.LineItem{
				Category:     t.Value(i, models.ColCategory),
				SKU:          t.Value(i, models.ColSKU),
				Combinations: t.Value(i, models.ColCombinations),
				PrinterSpec:  t.Value(i, models.ColPrinterSpec),
				Quantity:     *num(i, models.ColQuantity),
				Sample:       t.Value(i, models.ColSample),
				LeadTime:     *num(i, models.ColLeadTime),
				Weight:       *num(i, models.ColWeight),
			},
			WinningPrice: num(i, models.ColBidPrice),
		}
		rec.Key = rec.Item.Key()
		if w := t.Value(i, models.ColBidPartners); w != "" {
			rec.Winners = strings.Split(w, models.PartnerDelimiter)
		}
		if sheet.PriceColumn != nil {
			rec.CustomerPrice = num(i, priceCols[0])
		}
		if sheet.HasUnitPrice {
			rec.UnitPrice = num(i, models.ColBidUnitPrice)
		}
		if sheet.HasCustomerUnitPrice {
			rec.CustomerUnitPrice = num(i, models.ColCustomerUnitPrice)
		}
		for _, p := range sheet.Partners {
			raw := t.Value(i, p)
			if raw == "" {
				continue
			}
			v, _ := tabular.ParseNumber(raw)
			rec.Bids = append(rec.Bids, models.PartnerBid{Partner: p, Price: v})
		}
		sheet.Records = append(sheet.Records, rec)
	}
	sheet.Warnings = c.Warnings
	return sheet, nil
}
