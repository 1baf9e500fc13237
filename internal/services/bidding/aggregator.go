package bidding

import (
	"fmt"
	"sort"

	pkgerrors "supplier-pricing-backend/internal/errors"
	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/tabular"
)

// group collects the rows sharing one Product Key.
type group struct {
	key   models.ProductKey
	base  models.LineItem
	bids  []models.PartnerBid
	index map[string]int // partner -> position in bids
}

func (g *group) add(li models.LineItem) {
	if !li.Participating() {
		return
	}
	// a partner quoting twice keeps its first position and its last price
	if i, ok := g.index[li.Partner]; ok {
		g.bids[i].Price = li.Price
		return
	}
	g.index[li.Partner] = len(g.bids)
	g.bids = append(g.bids, models.PartnerBid{Partner: li.Partner, Price: li.Price})
}

// Aggregate merges supplier cost sheets into one bidding sheet priced at markup percent.
// Any source missing a required column fails the whole call.
func Aggregate(sources []tabular.Table, markup float64) (*models.BidSheet, error) {
	if err := models.ValidateMarkup("markup", markup); err != nil {
		return nil, err
	}
	for _, src := range sources {
		if missing := src.Missing(models.RequiredColumns); len(missing) > 0 {
			return nil, pkgerrors.NewSchemaError(src.Name, missing...)
		}
	}

	items, warnings := decode(sources)

	groups := make(map[models.ProductKey]*group)
	var partners []string
	seenPartner := make(map[string]bool)
	for _, li := range items {
		if !seenPartner[li.Partner] {
			seenPartner[li.Partner] = true
			partners = append(partners, li.Partner)
		}
		k := li.Key()
		g, ok := groups[k]
		if !ok {
			g = &group{key: k, base: li, index: make(map[string]int)}
			g.base.Partner, g.base.Price = "", 0
			groups[k] = g
		}
		g.add(li)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	col := models.NewCustomerPriceColumn(markup)
	sheet := &models.BidSheet{
		Partners:             partners,
		PriceColumn:          &col,
		Records:              make([]models.BidRecord, 0, len(keys)),
		Warnings:             warnings,
		HasUnitPrice:         true,
		HasCustomerUnitPrice: true,
	}
	for _, k := range keys {
		sheet.Records = append(sheet.Records, price(groups[models.ProductKey(k)], markup))
	}
	return sheet, nil
}

// price selects the winners of one group and derives the customer prices.
func price(g *group, markup float64) models.BidRecord {
	rec := models.BidRecord{Key: g.key, Item: g.base, Bids: g.bids}
	if len(g.bids) == 0 {
		return rec
	}

	lowest := g.bids[0].Price
	for _, b := range g.bids[1:] {
		if b.Price < lowest {
			lowest = b.Price
		}
	}
	for _, b := range g.bids {
		if b.Price == lowest {
			rec.Winners = append(rec.Winners, b.Partner)
		}
	}

	customer := models.ApplyMarkup(lowest, markup)
	rec.WinningPrice = &lowest
	rec.CustomerPrice = &customer
	rec.UnitPrice = models.PerUnit(rec.WinningPrice, g.base.Quantity)
	rec.CustomerUnitPrice = models.PerUnit(rec.CustomerPrice, g.base.Quantity)
	return rec
}

// decode turns every source row into a LineItem, coercing numeric cells.
func decode(sources []tabular.Table) ([]models.LineItem, []*pkgerrors.ParseError) {
	var items []models.LineItem
	var warnings []*pkgerrors.ParseError
	for _, src := range sources {
		c := tabular.NewCoercer(src.Name)
		for i := range src.Rows {
			row := i + 1
			items = append(items, models.LineItem{
				Category:     src.Value(i, models.ColCategory),
				SKU:          src.Value(i, models.ColSKU),
				Combinations: src.Value(i, models.ColCombinations),
				PrinterSpec:  src.Value(i, models.ColPrinterSpec),
				Quantity:     c.Number(row, models.ColQuantity, src.Value(i, models.ColQuantity)),
				Sample:       src.Value(i, models.ColSample),
				LeadTime:     c.Number(row, models.ColLeadTime, src.Value(i, models.ColLeadTime)),
				Weight:       c.Number(row, models.ColWeight, src.Value(i, models.ColWeight)),
				Partner:      src.Value(i, models.ColPartnerName),
				Price:        c.Number(row, models.ColPrinterCost, src.Value(i, models.ColPrinterCost)),
			})
		}
		warnings = append(warnings, c.Warnings...)
	}
	return items, warnings
}

// Summary is a one-line description of an aggregation, used in logs.
func Summary(sheet *models.BidSheet) string {
	unpriced := 0
	for _, r := range sheet.Records {
		if r.WinningPrice == nil {
			unpriced++
		}
	}
	return fmt.Sprintf("%d products, %d partners, %d without bids", len(sheet.Records), len(sheet.Partners), unpriced)
}
