package cmd

import (
	"fmt"

	"supplier-pricing-backend/internal/export"
	"supplier-pricing-backend/internal/services/matching"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

func newQCCommand(a *app) *cobra.Command {
	var (
		sheetA, sheetB string
		keyA, keyB     []string
		priceA, priceB string
		output         string
	)

	cmd := &cobra.Command{
		Use:   "qc",
		Short: "Reconcile the prices of two sheets",
		Long: `qc full-outer-joins two sheets on their key columns and marks every
pair MATCH, MISMATCH or MISSING. Prices match when equal at 2 decimal
places. Omitted key and price columns are guessed from the headers.`,
		Example: `  pricesheet qc --sheet-a catalog.csv --sheet-b store.csv \
    --key-a "Dandpo SKU,Quantity" --key-b "SKU,Qty" --price-b Price -o qc.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uploads, closeAll, err := openUploads(sheetA, sheetB)
			if err != nil {
				return err
			}
			defer closeAll()

			report, err := a.svc.RunQC(cmd.Context(), uploads[0], uploads[1], matching.Options{
				KeyColumnsA:  keyA,
				KeyColumnsB:  keyB,
				PriceColumnA: priceA,
				PriceColumnB: priceB,
			})
			if err != nil {
				return err
			}

			s := report.Summary
			fmt.Fprintf(cmd.ErrOrStderr(), "total %d, match %d, mismatch %d, missing %d\n",
				s.Total, s.MatchCount, s.MismatchCount, s.MissingCount)
			return writeSheet(cmd, output, report.Sheet(), func() (*excelize.File, error) { return export.QCWorkbook(report) })
		},
	}

	cmd.Flags().StringVar(&sheetA, "sheet-a", "", "first sheet (CSV)")
	cmd.Flags().StringVar(&sheetB, "sheet-b", "", "second sheet (CSV)")
	cmd.Flags().StringSliceVar(&keyA, "key-a", nil, "key columns of sheet A, comma separated")
	cmd.Flags().StringSliceVar(&keyB, "key-b", nil, "key columns of sheet B, comma separated")
	cmd.Flags().StringVar(&priceA, "price-a", "", "price column of sheet A")
	cmd.Flags().StringVar(&priceB, "price-b", "", "price column of sheet B")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.csv or .xlsx); stdout when empty")
	_ = cmd.MarkFlagRequired("sheet-a")
	_ = cmd.MarkFlagRequired("sheet-b")
	return cmd
}
