package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var printersCmd = &cobra.Command{
	Use:   "printers",
	Short: "List configured printers",
	Args:  cobra.NoArgs,
	RunE:  runPrinters,
}

func init() {
	rootCmd.AddCommand(printersCmd)
	printersCmd.Flags().String("test", "", "Send a test page to the named printer")
}

func runPrinters(cmd *cobra.Command, _ []string) error {
	a, err := newApp(envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if name, _ := cmd.Flags().GetString("test"); name != "" {
		if _, err := a.printers.TestPrint(cmd.Context(), name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Test page sent to %s\n", name)
		return nil
	}

	status := a.printers.GetStatus()
	if len(status) == 0 {
		fmt.Fprintln(out, a.printers.ListPrinters()[0])
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tCONNECTED\tDEFAULT")
	for _, p := range status {
		def := ""
		if p.Default {
			def = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", p.Name, p.Type, p.Connected, def)
	}
	return tw.Flush()
}
