package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	inErrors "github.com/Alturino/medstore/internal/errors"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

func newExportCommand(a *app) *cobra.Command {
	var format, out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as csv or xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			if format != formatCSV && format != formatXLSX {
				return fmt.Errorf("unsupported format=%q, want %s or %s", format, formatCSV, formatXLSX)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed creating file=%s with error=%w", out, err)
				}
				defer f.Close()
				w = f
			}

			if format == formatXLSX {
				return a.svc.ExportXLSX(cmd.Context(), w)
			}
			return a.svc.ExportCSV(cmd.Context(), w)
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "", "csv or xlsx, defaults to the extension of --out")
	exportCmd.Flags().StringVar(&out, "out", "", "output file, stdout when empty")
	return exportCmd
}

func newImportCommand(a *app) *cobra.Command {
	var file string
	importCmd := &cobra.Command{
		Use:         "import",
		Annotations: autoBackupAnnotation,
		Short:       "Import medicines from a csv file",
		Args:        cobra.NoArgs,
		RunE:        func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed opening file=%s with error=%w", file, err)
			}
			defer f.Close()

			result, err := a.svc.ImportCSV(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d medicines\n", result.Imported)
			for _, rejected := range result.Rejected {
				fmt.Fprintf(cmd.OutOrStdout(), "Rejected line %d: %s\n", rejected.Line, rejected.Message())
			}
			if result.Imported == 0 && len(result.Rejected) > 0 {
				return fmt.Errorf("%w: no row imported", inErrors.ErrInvalidMedicine)
			}
			return nil
		},
	}
	importCmd.Flags().StringVar(&file, "file", "", "csv file with header id,name,price,stock,expiry,company")
	importCmd.MarkFlagRequired("file")
	return importCmd
}
