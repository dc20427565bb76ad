package cli

import (
	"fmt"

	"github.com/sangkips/billdesk/internal/infrastructure/document"
	"github.com/spf13/cobra"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Combine bill PDFs or read their text",
}

var pdfMergeCmd = &cobra.Command{
	Use:   "merge -o OUT.pdf FILE.pdf...",
	Short: "Concatenate bill PDFs into one file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPDFMerge,
}

var pdfTextCmd = &cobra.Command{
	Use:   "text FILE.pdf",
	Short: "Print the text of a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runPDFText,
}

func init() {
	rootCmd.AddCommand(pdfCmd)
	pdfCmd.AddCommand(pdfMergeCmd)
	pdfCmd.AddCommand(pdfTextCmd)

	pdfMergeCmd.Flags().StringP("output", "o", "merged.pdf", "Merged output file")
}

func runPDFMerge(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("output")
	if err := document.MergePDFs(args, out); err != nil {
		return err
	}
	pages, err := document.PageCount(out)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Merged %d files (%d pages) into %s\n", len(args), pages, out)
	return nil
}

func runPDFText(cmd *cobra.Command, args []string) error {
	text, err := document.ExtractText(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
