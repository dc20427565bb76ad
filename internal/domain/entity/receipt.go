package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptHeader holds the store/business header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name            string          `json:"name"`
	MRP             decimal.Decimal `json:"mrp"`
	Rate            decimal.Decimal `json:"rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Quantity        int64           `json:"quantity"`
	Total           decimal.Decimal `json:"total"`
}

// Receipt is a value object representing a printable bill.
// It is NOT a database entity. Every amount on it was computed before the
// receipt was built; renderers only format them.
type Receipt struct {
	Header        ReceiptHeader   `json:"header"`
	BillNumber    string          `json:"bill_number"`
	Date          time.Time       `json:"date"`
	Customer      string          `json:"customer,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Items         []ReceiptItem   `json:"items"`
	SubTotal      decimal.Decimal `json:"sub_total"`
	GSTPercent    decimal.Decimal `json:"gst_percent"`
	GST           decimal.Decimal `json:"gst"`
	Total         decimal.Decimal `json:"total"`
	Paid          decimal.Decimal `json:"paid"`
	Due           decimal.Decimal `json:"due"`
}

// ReceiptFromBill rebuilds a receipt from an archived bill.
func ReceiptFromBill(header ReceiptHeader, b *BillRecord) *Receipt {
	r := &Receipt{
		Header:        header,
		BillNumber:    b.BillNumber,
		Date:          b.IssuedAt,
		Customer:      b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		SubTotal:      b.SubTotal,
		GSTPercent:    b.GSTPercent,
		GST:           b.GSTAmount,
		Total:         b.Total,
		Paid:          b.Paid,
		Due:           b.Due,
	}
	for _, it := range b.Items {
		r.Items = append(r.Items, ReceiptItem{
			Name:            it.Name,
			MRP:             it.MRP,
			Rate:            it.Rate,
			DiscountPercent: it.DiscountPercent,
			Quantity:        it.Quantity,
			Total:           it.LineTotal,
		})
	}
	return r
}
