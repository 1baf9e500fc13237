package models

import (
	"strings"

	pkgerrors "supplier-pricing-backend/internal/errors"
	"supplier-pricing-backend/internal/tabular"
)

// Bidding sheet columns.
const (
	ColBidPartners       = "Bid Selected Partners"
	ColBidPrice          = "Bid Selected Price"
	ColBidUnitPrice      = "Bid Selected Unit Price"
	ColCustomerUnitPrice = "Customer Unit Price"
	BiddingSheetTitle    = "Bidding Sheet"
	CatalogSheetTitle    = "Catalog Sheet"
	QCReportTitle        = "Catalog QC"
)

// PartnerBid is one supplier's price for a product.
type PartnerBid struct {
	Partner string  `json:"partner"`
	Price   float64 `json:"price"`
}

// BidRecord is the aggregated view of one Product Key.
type BidRecord struct {
	Key               ProductKey   `json:"key"`
	Item              LineItem     `json:"item"`
	Bids              []PartnerBid `json:"bids"`
	WinningPrice      *float64     `json:"winning_price"`
	Winners           []string     `json:"winners"`
	CustomerPrice     *float64     `json:"customer_price"`
	UnitPrice         *float64     `json:"unit_price"`
	CustomerUnitPrice *float64     `json:"customer_unit_price"`
}

// PriceFor returns the price partner quoted, if any.
func (r BidRecord) PriceFor(partner string) (float64, bool) {
	for _, b := range r.Bids {
		if b.Partner == partner {
			return b.Price, true
		}
	}
	return 0, false
}

// WinnersLabel joins the winners for display.
func (r BidRecord) WinnersLabel() string {
	return strings.Join(r.Winners, PartnerDelimiter)
}

// BidSheet is the aggregated best-price sheet.
type BidSheet struct {
	Partners    []string                `json:"partners"`
	PriceColumn *CustomerPriceColumn    `json:"price_column"`
	Records     []BidRecord             `json:"records"`
	Warnings    []*pkgerrors.ParseError `json:"-"`

	// Set when the sheet was decoded from an upload that carried these columns.
	HasUnitPrice         bool `json:"-"`
	HasCustomerUnitPrice bool `json:"-"`
}

// Sheet renders the bidding sheet grid.
func (s *BidSheet) Sheet() *tabular.Sheet {
	label := CustomerPriceBase
	if s.PriceColumn != nil {
		label = s.PriceColumn.Label()
	}

	cols := append([]string{}, KeyColumns...)
	cols = append(cols, ColBidPartners, ColBidPrice, label, ColBidUnitPrice, ColCustomerUnitPrice)
	cols = append(cols, s.Partners...)

	out := &tabular.Sheet{Title: BiddingSheetTitle, Columns: cols}
	for _, r := range s.Records {
		row := r.Item.keyCells()
		var winners any
		if len(r.Winners) > 0 {
			winners = r.WinnersLabel()
		}
		row = append(row, winners, cell(r.WinningPrice), cell(r.CustomerPrice), cell(r.UnitPrice), cell(r.CustomerUnitPrice))
		for _, p := range s.Partners {
			if price, ok := r.PriceFor(p); ok {
				row = append(row, price)
			} else {
				row = append(row, nil)
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func cell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
