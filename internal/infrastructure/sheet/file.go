package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sangkips/billdesk/internal/domain/entity"
)

// Format is a supported product master file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("sheet: unsupported file type %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

// ReadProductsFile reads a product master from disk.
func ReadProductsFile(path string) ([]Row, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: %w", err)
	}
	defer f.Close()

	if format == FormatXLSX {
		return ReadXLSX(f)
	}
	return ReadCSV(f)
}

// WriteProductsFile writes products to path, replacing any existing file.
func WriteProductsFile(path string, products []entity.Product) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	if format == FormatXLSX {
		err = WriteXLSX(f, products)
	} else {
		err = WriteCSV(f, products)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
