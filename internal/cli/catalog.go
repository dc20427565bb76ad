package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Import or export the product master",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import products from a .csv, .txt or .xlsx file",
	Long: `Import products from a delimited or spreadsheet file. Rows are matched
to existing products by name, ignoring case; rows that fail validation are
reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export every product to a .csv or .xlsx file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogExport,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogExportCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	a, err := newApp(envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.catalog.ImportFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d of %d rows (%d failed)\n", res.Successful, res.TotalRows, res.Failed)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  row %d: %s: %s\n", e.Row, e.Field, e.Message)
	}
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.catalog.ExportFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", n, args[0])
	return nil
}
