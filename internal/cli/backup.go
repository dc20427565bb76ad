package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a compressed archive of the catalog, bills, customers and counter",
	Args:  cobra.NoArgs,
	RunE:  runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, _ []string) error {
	a, err := newApp(envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.backup.Create(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s (%d products, %d bills, %d customers, %d bytes)\n",
		res.Path, res.Products, res.Bills, res.Customers, res.Size)
	return nil
}
