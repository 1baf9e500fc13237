package cmd

import (
	"fmt"

	"supplier-pricing-backend/internal/export"
	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/services/bidding"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

func newBidCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "bid [flags] FILE...",
		Short: "Aggregate supplier cost sheets into a bidding sheet",
		Long: `bid merges one or more supplier cost sheets, picks the lowest positive
Printer Cost per product and applies the customer markup.

Every file must carry the columns Category, Dandpo SKU, Combinations,
Printer Specifications, Quantity, Sample, Printer Cost, Lead Time,
Weight in kg and Partner Name.`,
		Example: `  pricesheet bid --markup 35 -o "Bidding Sheet.xlsx" supplier1.csv supplier2.csv`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markup, err := a.markup("bid_markup")
			if err != nil {
				return err
			}
			uploads, closeAll, err := openUploads(args...)
			if err != nil {
				return err
			}
			defer closeAll()

			sheet, err := a.svc.BuildBidSheet(cmd.Context(), uploads, markup, uuid.Nil)
			if err != nil {
				return err
			}
			for _, w := range sheet.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
			}

			grid := sheet.Sheet()
			if output != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), bidding.Summary(sheet))
			}
			return writeSheet(cmd, output, grid, func() (*excelize.File, error) { return export.BidWorkbook(grid) })
		},
	}

	cmd.Flags().Float64("markup", models.DefaultBidMarkup, "customer markup percentage (0-200)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.csv or .xlsx); stdout when empty")
	mustBind(a.v, "bid_markup", cmd.Flags().Lookup("markup"))
	return cmd
}
