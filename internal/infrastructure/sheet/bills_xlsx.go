package sheet

import (
	"fmt"
	"io"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

const (
	BillsSheet     = "Bills"
	BillItemsSheet = "Items"
)

var (
	billsHeader = []string{
		"Bill No", "Date", "Customer", "Phone", "Items", "Sub Total",
		"GST %", "GST", "Total", "Paid", "Due",
	}
	billItemsHeader = []string{
		"Bill No", "#", "Item", "MRP", "Rate", "Disc %", "Qty", "Total",
	}
)

// WriteBillsXLSX writes one row per bill on the Bills sheet and one row
// per line item on the Items sheet.
func WriteBillsXLSX(w io.Writer, bills []entity.BillRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", BillsSheet); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	if _, err := f.NewSheet(BillItemsSheet); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	if err := setRow(f, BillsSheet, 1, stringsToCells(billsHeader)); err != nil {
		return err
	}
	if err := setRow(f, BillItemsSheet, 1, stringsToCells(billItemsHeader)); err != nil {
		return err
	}

	itemRow := 2
	for i := range bills {
		b := &bills[i]
		row := []any{
			b.BillNumber,
			b.IssuedAt.Format("02-01-2006 15:04"),
			b.CustomerName,
			b.CustomerPhone,
			len(b.Items),
			b.SubTotal.InexactFloat64(),
			b.GSTPercent.InexactFloat64(),
			b.GSTAmount.InexactFloat64(),
			b.Total.InexactFloat64(),
			b.Paid.InexactFloat64(),
			b.Due.InexactFloat64(),
		}
		if err := setRow(f, BillsSheet, i+2, row); err != nil {
			return err
		}
		for _, it := range b.Items {
			row := []any{
				b.BillNumber,
				it.Position,
				it.Name,
				it.MRP.InexactFloat64(),
				it.Rate.InexactFloat64(),
				it.DiscountPercent.InexactFloat64(),
				it.Quantity,
				it.LineTotal.InexactFloat64(),
			}
			if err := setRow(f, BillItemsSheet, itemRow, row); err != nil {
				return err
			}
			itemRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("sheet: write xlsx: %w", err)
	}
	return nil
}
