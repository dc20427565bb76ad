// Package cli holds the billdesk commands.
package cli

import (
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "billdesk",
	Short: "Point-of-sale billing for a retail counter",
	Long: `billdesk composes bills at the counter, numbers and archives them,
renders receipts and sends them to a printer. Run "billdesk serve" for the
HTTP API; the other commands work on the same store directly.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to the .env configuration file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
