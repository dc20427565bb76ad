package cli

import (
	"fmt"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/infrastructure/document"
	"github.com/spf13/cobra"
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Inspect and export archived bills",
}

var billsExportCmd = &cobra.Command{
	Use:   "export FILE.xlsx",
	Short: "Export every archived bill to a workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runBillsExport,
}

var billsShowCmd = &cobra.Command{
	Use:   "show BILL_NUMBER",
	Short: "Print an archived bill as a text receipt",
	Args:  cobra.ExactArgs(1),
	RunE:  runBillsShow,
}

func init() {
	rootCmd.AddCommand(billsCmd)
	billsCmd.AddCommand(billsExportCmd)
	billsCmd.AddCommand(billsShowCmd)
}

func runBillsExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.billing.ExportBills(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bills to %s\n", n, args[0])
	return nil
}

func runBillsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	bill, err := a.billing.GetBill(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	header := entity.ReceiptHeader{
		StoreName: a.cfg.Shop.Name,
		Address:   a.cfg.Shop.Address,
		Phone:     a.cfg.Shop.Phone,
		TaxID:     a.cfg.Shop.GSTIN,
	}
	fmt.Fprint(cmd.OutOrStdout(), document.RenderText(entity.ReceiptFromBill(header, bill)))
	return nil
}
