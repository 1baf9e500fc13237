package catalog

import (
	"testing"

	pkgerrors "supplier-pricing-backend/internal/errors"
	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/services/bidding"
	"supplier-pricing-backend/internal/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var biddingColumns = []string{
	"Category", "Dandpo SKU", "Combinations", "Printer Specifications", "Quantity", "Sample",
	"Lead Time", "Weight in kg", "Bid Selected Partners", "Bid Selected Price", "Customer Price (35%)",
	"Bid Selected Unit Price", "Customer Unit Price", "Pname1", "Pname2",
}

func uploadedSheet(t *testing.T) *models.BidSheet {
	t.Helper()
	tbl := tabular.New("Bidding Sheet.csv", biddingColumns, [][]string{
		{"T-Shirts", "TS001", "Red, L", "DTG Print", "100", "Yes", "7", "0.2", "Pname1", "550", "743", "5.50", "7.43", "550", "575"},
		{"Hoodies", "HD001", "Blue, M", "Screen Print", "75", "No", "10", "0.4", "Pname1", "618", "834", "8.24", "11.12", "618", ""},
		{"Caps", "CP001", "Black, One Size", "Embroidery", "0", "Yes", "5", "0.1", "Pname1", "275", "371", "", "", "", ""},
	})
	sheet, err := FromTable(tbl)
	require.NoError(t, err)
	return sheet
}

func TestProjectKeepsUpstreamPriceWithoutOverride(t *testing.T) {
	out, err := Project(uploadedSheet(t), 0)
	require.NoError(t, err)

	assert.Equal(t, "Customer Price (35%)", out.PriceColumn.Label())
	cols := out.Columns()
	assert.Equal(t, "Customer Price (35%)", cols[9])

	rec := out.Records[0]
	assert.Equal(t, 550.0, *rec.PrinterCost)
	assert.Equal(t, 743.0, *rec.CustomerPrice)
	assert.Equal(t, 5.5, *rec.UnitPrinterCost)
	assert.Equal(t, 7.43, *rec.UnitCustomerCost)
	assert.Equal(t, 834.0, *out.Records[1].CustomerPrice)
}

func TestProjectRecomputesWithOverride(t *testing.T) {
	out, err := Project(uploadedSheet(t), 40)
	require.NoError(t, err)

	assert.Equal(t, "Customer Price (40.0%)", out.PriceColumn.Label())

	rec := out.Records[0]
	assert.Equal(t, 770.0, *rec.CustomerPrice)
	assert.Equal(t, 7.7, *rec.UnitCustomerCost)
	assert.Equal(t, 5.5, *rec.UnitPrinterCost, "printer side unit price is carried over")

	hoodie := out.Records[1]
	assert.Equal(t, 865.0, *hoodie.CustomerPrice) // 618 × 1.4 = 865.2
	assert.Equal(t, 11.53, *hoodie.UnitCustomerCost)

	caps := out.Records[2]
	assert.Equal(t, 385.0, *caps.CustomerPrice)
	assert.Nil(t, caps.UnitCustomerCost, "zero quantity has no unit price")
}

func TestProjectPartnersAndPlaceholders(t *testing.T) {
	sheet := uploadedSheet(t)
	assert.Equal(t, []string{"Pname1", "Pname2"}, sheet.Partners)

	out, err := Project(sheet, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pname1", "Pname2"}, out.Records[0].Partners)
	assert.Equal(t, []string{"Pname1"}, out.Records[1].Partners)
	assert.Empty(t, out.Records[2].Partners)

	grid := out.Sheet()
	require.Len(t, grid.Columns, 18)
	for _, col := range models.PlaceholderColumns {
		idx := grid.Index(col)
		require.GreaterOrEqual(t, idx, 0, col)
		for _, row := range grid.Rows {
			assert.Equal(t, "", row[idx])
		}
	}
	assert.Equal(t, "Pname1, Pname2", grid.Rows[0][grid.Index("Partners")])
}

func TestProjectFallbackCustomerPrice(t *testing.T) {
	tbl := tabular.New("plain.csv",
		append(append([]string{}, models.KeyColumns...), "Bid Selected Price", "P1"),
		[][]string{{"Caps", "CP001", "Black", "Embroidery", "4", "No", "5", "0.1", "10", "10"}},
	)
	sheet, err := FromTable(tbl)
	require.NoError(t, err)

	out, err := Project(sheet, 0)
	require.NoError(t, err)

	assert.Equal(t, "Customer Price", out.PriceColumn.Label())
	rec := out.Records[0]
	assert.Equal(t, 10.0, *rec.CustomerPrice)
	assert.Equal(t, 2.5, *rec.UnitPrinterCost)
	assert.Equal(t, 2.5, *rec.UnitCustomerCost)
}

func TestProjectFromAggregation(t *testing.T) {
	src := tabular.New("p.csv", models.RequiredColumns, [][]string{
		{"T-Shirts", "TS001", "Red, L", "DTG Print", "4", "Yes", "30", "48", "0.2", "P1"},
		{"T-Shirts", "TS001", "Red, L", "DTG Print", "4", "Yes", "25", "48", "0.2", "P2"},
		{"T-Shirts", "TS001", "Red, L", "DTG Print", "4", "Yes", "0", "48", "0.2", "P3"},
	})
	sheet, err := bidding.Aggregate([]tabular.Table{src}, 35)
	require.NoError(t, err)

	out, err := Project(sheet, 0)
	require.NoError(t, err)

	rec := out.Records[0]
	assert.Equal(t, "Customer Price (35.0%)", out.PriceColumn.Label())
	assert.Equal(t, 25.0, *rec.PrinterCost)
	assert.Equal(t, 34.0, *rec.CustomerPrice)
	assert.Equal(t, 6.25, *rec.UnitPrinterCost)
	assert.Equal(t, 8.5, *rec.UnitCustomerCost)
	assert.Equal(t, []string{"P1", "P2"}, rec.Partners)
}

func TestProjectErrors(t *testing.T) {
	t.Run("missing printer cost source", func(t *testing.T) {
		tbl := tabular.New("broken.csv", models.KeyColumns, [][]string{{"a", "b", "c", "d", "1", "e", "1", "1"}})
		_, err := FromTable(tbl)

		se, ok := pkgerrors.AsSchemaError(err)
		require.True(t, ok)
		assert.Equal(t, "broken.csv", se.Source)
		assert.Equal(t, []string{"Bid Selected Price"}, se.Missing)
	})

	t.Run("nil sheet", func(t *testing.T) {
		_, err := Project(nil, 0)
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("override out of range", func(t *testing.T) {
		_, err := Project(&models.BidSheet{}, 201)
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}
