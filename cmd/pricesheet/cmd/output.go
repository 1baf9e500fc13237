package cmd

import (
	"fmt"
	"os"

	"supplier-pricing-backend/internal/export"
	"supplier-pricing-backend/internal/services/pricing"
	"supplier-pricing-backend/internal/tabular"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

// writeSheet writes grid to path, or as CSV to stdout when path is empty.
func writeSheet(cmd *cobra.Command, path string, grid *tabular.Sheet, workbook func() (*excelize.File, error)) error {
	if path == "" {
		return export.WriteCSV(cmd.OutOrStdout(), grid)
	}

	if export.FormatForPath(path) == export.FormatXLSX {
		f, err := workbook()
		if err != nil {
			return fmt.Errorf("building workbook: %w", err)
		}
		defer f.Close()
		if err := f.SaveAs(path); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	} else {
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := export.WriteCSV(out, grid); err != nil {
			out.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := out.Close(); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(grid.Rows), path)
	return nil
}

// openUploads opens every path as an Upload named after the file.
func openUploads(paths ...string) ([]pricing.Upload, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	uploads := make([]pricing.Upload, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, pricing.Upload{Name: p, Body: f})
	}
	return uploads, closeAll, nil
}
