package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func init() {
	// pdfcpu otherwise writes a config directory under the user's home.
	api.DisableConfigDir()
}

// MergePDFs concatenates the pages of inputs, in order, into out.
func MergePDFs(inputs []string, out string) error {
	if len(inputs) == 0 {
		return errors.New("document: nothing to merge")
	}
	if err := api.MergeCreateFile(inputs, out, false, nil); err != nil {
		return fmt.Errorf("document: merge: %w", err)
	}
	return nil
}

// PageCount reports the number of pages in a PDF file.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("document: page count: %w", err)
	}
	return n, nil
}

// ExtractText returns the plain text of every page of a PDF file.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("document: open %s: %w", path, err)
	}
	defer f.Close()

	text, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("document: extract text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		return "", fmt.Errorf("document: extract text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
