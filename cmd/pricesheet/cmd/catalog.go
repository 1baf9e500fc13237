package cmd

import (
	"supplier-pricing-backend/internal/export"
	"supplier-pricing-backend/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

func newCatalogCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "catalog [flags] FILE",
		Short: "Project a bidding sheet onto the catalog layout",
		Long: `catalog reads a bidding sheet and writes the catalog sheet. A markup
above zero recomputes every customer price from Printer Cost; zero keeps
the customer price column of the input.`,
		Example: `  pricesheet catalog --markup 40 -o "Catalog Sheet.csv" "Bidding Sheet.csv"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markup, err := a.markup("catalog_markup")
			if err != nil {
				return err
			}
			uploads, closeAll, err := openUploads(args[0])
			if err != nil {
				return err
			}
			defer closeAll()

			out, err := a.svc.BuildCatalog(cmd.Context(), uploads[0], markup, uuid.Nil)
			if err != nil {
				return err
			}

			grid := out.Sheet()
			return writeSheet(cmd, output, grid, func() (*excelize.File, error) { return export.CatalogWorkbook(grid) })
		},
	}

	cmd.Flags().Float64("markup", models.DefaultCatalogMarkup, "customer markup override percentage (0-200, 0 keeps the input)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.csv or .xlsx); stdout when empty")
	mustBind(a.v, "catalog_markup", cmd.Flags().Lookup("markup"))
	return cmd
}
