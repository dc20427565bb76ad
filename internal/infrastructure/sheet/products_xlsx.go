package sheet

import (
	"fmt"
	"io"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

// ProductsSheet is the sheet name used when writing the product master.
const ProductsSheet = "Products"

// ReadXLSX parses the first sheet of a workbook with the same header rules
// as ReadCSV.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("sheet: open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("sheet: read rows: %w", err)
	}
	return parseRecords(records), nil
}

// WriteXLSX writes products to a single "Products" sheet. Amounts are
// stored as numbers so the workbook stays usable for arithmetic.
func WriteXLSX(w io.Writer, products []entity.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProductsSheet); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	if err := setRow(f, ProductsSheet, 1, stringsToCells(Header)); err != nil {
		return err
	}
	for i := range products {
		p := &products[i]
		row := []any{
			p.Name,
			entity.StringValue(p.SKU),
			entity.StringValue(p.Category),
			entity.StringValue(p.Brand),
			entity.StringValue(p.Size),
			entity.StringValue(p.Color),
			entity.StringValue(p.HSNCode),
			p.MRP.InexactFloat64(),
			p.Rate.InexactFloat64(),
			p.WholesaleRate.InexactFloat64(),
			p.SuperWholesaleRate.InexactFloat64(),
			p.DiscountPercent.InexactFloat64(),
			p.QuantityOnHand,
			entity.StringValue(p.ImagePath),
			entity.StringValue(p.Notes),
		}
		if err := setRow(f, ProductsSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("sheet: write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("sheet: set row %d: %w", row, err)
	}
	return nil
}

func stringsToCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
