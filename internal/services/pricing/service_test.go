package pricing

import (
	"context"
	"strings"
	"testing"
	"time"

	pkgerrors "supplier-pricing-backend/internal/errors"
	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/services/matching"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const supplierHeader = "Category,Dandpo SKU,Combinations,Printer Specifications,Quantity,Sample,Printer Cost,Lead Time,Weight in kg,Partner Name\n"

func supplier(name string, rows ...string) Upload {
	return Upload{Name: name, Body: strings.NewReader(supplierHeader + strings.Join(rows, "\n") + "\n")}
}

func csvUpload(name, body string) Upload {
	return Upload{Name: name, Body: strings.NewReader(body)}
}

func newTestService() *Service {
	return NewService(Options{
		BidMarkup:     models.DefaultBidMarkup,
		CatalogMarkup: models.DefaultCatalogMarkup,
		SessionTTL:    time.Hour,
	}, zerolog.Nop())
}

func ptr(v float64) *float64 { return &v }

func TestBuildBidSheet(t *testing.T) {
	svc := newTestService()
	sid := svc.Session("")

	sheet, err := svc.BuildBidSheet(context.Background(), []Upload{
		supplier("p1.csv", `T-Shirts,TS001,"Red, L",DTG Print,1,Yes,30,48,0.2,P1`),
		supplier("p2.csv", `T-Shirts,TS001,"Red, L",DTG Print,1,Yes,25,48,0.2,P2`),
	}, nil, sid)
	require.NoError(t, err)

	require.Len(t, sheet.Records, 1)
	assert.Equal(t, 34.0, *sheet.Records[0].CustomerPrice, "default markup applies")

	sess, ok := svc.SessionInfo(sid)
	require.True(t, ok)
	require.NotNil(t, sess.BidMarkup)
	assert.Equal(t, 35.0, *sess.BidMarkup)
	assert.Equal(t, int64(1), svc.Stats().BidSheets)
}

func TestBuildBidSheetRemembersSessionMarkup(t *testing.T) {
	svc := newTestService()
	sid := svc.Session("")
	ctx := context.Background()

	_, err := svc.BuildBidSheet(ctx, []Upload{
		supplier("p1.csv", `Caps,CP001,Black,Embroidery,1,No,10,5,0.1,P1`),
	}, ptr(50), sid)
	require.NoError(t, err)

	sheet, err := svc.BuildBidSheet(ctx, []Upload{
		supplier("p1.csv", `Caps,CP001,Black,Embroidery,1,No,10,5,0.1,P1`),
	}, nil, sid)
	require.NoError(t, err)
	assert.Equal(t, 15.0, *sheet.Records[0].CustomerPrice)
	assert.Equal(t, "Customer Price (50.0%)", sheet.PriceColumn.Label())

	other, err := svc.BuildBidSheet(ctx, []Upload{
		supplier("p1.csv", `Caps,CP001,Black,Embroidery,1,No,10,5,0.1,P1`),
	}, nil, svc.Session(""))
	require.NoError(t, err)
	assert.Equal(t, 14.0, *other.Records[0].CustomerPrice, "sessions do not share markups")
}

func TestBuildBidSheetErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.BuildBidSheet(ctx, nil, nil, uuid.Nil)
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = svc.BuildBidSheet(ctx, []Upload{csvUpload("bad.csv", "Category,Dandpo SKU\nT-Shirts,TS001\n")}, nil, uuid.Nil)
	se, ok := pkgerrors.AsSchemaError(err)
	require.True(t, ok)
	assert.Equal(t, "bad.csv", se.Source)
	assert.Contains(t, se.Missing, "Printer Cost")

	_, err = svc.BuildBidSheet(ctx, []Upload{csvUpload("empty.csv", "")}, nil, uuid.Nil)
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = svc.BuildBidSheet(ctx, []Upload{supplier("wide.csv", `T-Shirts,TS001,Red,DTG Print,1,Yes,1,250,48,0.2,P1`)}, nil, uuid.Nil)
	assert.True(t, pkgerrors.IsValidationError(err), "unquoted thousands separator shifts the row")

	_, err = svc.BuildBidSheet(ctx, []Upload{supplier("p.csv", `Caps,CP001,Black,Embroidery,1,No,10,5,0.1,P1`)}, ptr(250), uuid.Nil)
	assert.True(t, pkgerrors.IsValidationError(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.BuildBidSheet(cancelled, []Upload{supplier("p.csv", `Caps,CP001,Black,Embroidery,1,No,10,5,0.1,P1`)}, nil, uuid.Nil)
	assert.ErrorIs(t, err, context.Canceled)
}

const biddingCSV = "Category,Dandpo SKU,Combinations,Printer Specifications,Quantity,Sample,Lead Time,Weight in kg," +
	"Bid Selected Partners,Bid Selected Price,Customer Price (35%),Bid Selected Unit Price,Customer Unit Price,Pname1,Pname2\n" +
	`T-Shirts,TS001,"Red, L",DTG Print,100,Yes,7,0.2,Pname1,550,743,5.50,7.43,550,575` + "\n"

func TestBuildCatalog(t *testing.T) {
	svc := newTestService()
	sid := svc.Session("")
	ctx := context.Background()

	out, err := svc.BuildCatalog(ctx, csvUpload("Bidding Sheet.csv", biddingCSV), nil, sid)
	require.NoError(t, err)
	assert.Equal(t, "Customer Price (35%)", out.PriceColumn.Label())
	assert.Equal(t, 743.0, *out.Records[0].CustomerPrice)

	out, err = svc.BuildCatalog(ctx, csvUpload("Bidding Sheet.csv", biddingCSV), ptr(40), sid)
	require.NoError(t, err)
	assert.Equal(t, 770.0, *out.Records[0].CustomerPrice)

	// the session now carries 40%
	out, err = svc.BuildCatalog(ctx, csvUpload("Bidding Sheet.csv", biddingCSV), nil, sid)
	require.NoError(t, err)
	assert.Equal(t, "Customer Price (40.0%)", out.PriceColumn.Label())
	assert.Equal(t, []string{"Pname1", "Pname2"}, out.Records[0].Partners)
}

const qcA = "Dandpo SKU,Quantity,Customer Price (35%)\nTS001,1,34\nTS001,10,300\nHD001,75,2025\n"
const qcB = "SKU Code,Qty,Price\nTS001,1.0,34.00\nTS001,10,310\n"

func TestRunQCWithExplicitColumns(t *testing.T) {
	svc := newTestService()

	report, err := svc.RunQC(context.Background(), csvUpload("a.csv", qcA), csvUpload("b.csv", qcB), matching.Options{
		KeyColumnsA:  []string{"Dandpo SKU", "Quantity"},
		KeyColumnsB:  []string{"SKU Code", "Qty"},
		PriceColumnA: "Customer Price (35%)",
		PriceColumnB: "Price",
	})
	require.NoError(t, err)

	assert.Equal(t, models.QCSummary{Total: 3, MatchCount: 1, MismatchCount: 1, MissingCount: 1}, report.Summary)
	assert.Equal(t, int64(1), svc.Stats().QCReports)
}

func TestRunQCSuggestsColumns(t *testing.T) {
	svc := newTestService()
	b := "Dandpo SKU,Quantity,Customer Price\nTS001,1,34\n"

	report, err := svc.RunQC(context.Background(), csvUpload("a.csv", qcA), csvUpload("b.csv", b), matching.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dandpo SKU", "Quantity"}, report.KeyColumns)
	assert.Equal(t, 1, report.Summary.MatchCount)
	assert.Equal(t, 2, report.Summary.MissingCount)
}

func TestRunQCUnresolvedColumnIsSchemaError(t *testing.T) {
	svc := newTestService()

	_, err := svc.RunQC(context.Background(), csvUpload("a.csv", qcA), csvUpload("b.csv", "Item,Count\nx,1\n"), matching.Options{})
	se, ok := pkgerrors.AsSchemaError(err)
	require.True(t, ok)
	assert.Equal(t, "b.csv", se.Source)
	assert.Equal(t, []string{"Dandpo SKU", "Quantity", "Customer Price"}, se.Missing)
}

func TestInspectQC(t *testing.T) {
	svc := newTestService()

	cols, err := svc.InspectQC(context.Background(), csvUpload("a.csv", qcA), csvUpload("b.csv", qcB))
	require.NoError(t, err)

	assert.Equal(t, "Dandpo SKU", cols.SheetA.SKUColumn)
	assert.Equal(t, "Customer Price (35%)", cols.SheetA.PriceColumn)
	assert.Equal(t, []string{"SKU Code", "Qty", "Price"}, cols.SheetB.Columns)
	assert.Equal(t, "Price", cols.SheetB.PriceColumn)
}

func TestSessionExpiry(t *testing.T) {
	svc := newTestService()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	sid := svc.Session("")
	assert.Equal(t, sid, svc.Session(sid.String()), "live session is reused")

	clock = clock.Add(2 * time.Hour)
	fresh := svc.Session(sid.String())
	assert.NotEqual(t, sid, fresh)

	_, ok := svc.SessionInfo(sid)
	assert.False(t, ok)
	assert.Equal(t, 1, svc.Stats().Sessions)

	assert.NotEqual(t, uuid.Nil, svc.Session("not-a-uuid"))
}
