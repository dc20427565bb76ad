package request

import (
	"github.com/sangkips/billdesk/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ItemRequest carries a bill line as typed at the counter. Values are kept
// as text; the ledger parses and validates them. When Name matches a
// catalog product and only Name and Quantity are given, the line is filled
// from the catalog.
type ItemRequest struct {
	Name     string `json:"name"`
	MRP      string `json:"mrp"`
	Rate     string `json:"rate"`
	Discount string `json:"discount"`
	Quantity string `json:"quantity"`
}

// FromCatalog reports whether the request names a product and nothing else
// besides an optional quantity.
func (r ItemRequest) FromCatalog() bool {
	return r.Name != "" && r.MRP == "" && r.Rate == "" && r.Discount == ""
}

func (r ItemRequest) ToInput() ledger.ItemInput {
	return ledger.ItemInput{
		Name:     r.Name,
		MRP:      r.MRP,
		Rate:     r.Rate,
		Discount: r.Discount,
		Quantity: r.Quantity,
	}
}

type MoveItemRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

func (r MoveItemRequest) ToDirection() ledger.Direction {
	if r.Direction == "down" {
		return ledger.Down
	}
	return ledger.Up
}

// BillCustomerRequest sets the customer printed on the current bill. When
// Save is set the customer is also stored in the customer book.
type BillCustomerRequest struct {
	Name  string `json:"name" binding:"max=255"`
	Phone string `json:"phone" binding:"max=50"`
	Save  bool   `json:"save"`
}

type PaymentRequest struct {
	Paid decimal.Decimal `json:"paid"`
}

type GSTRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

// LowStockRequest overrides the configured threshold when set.
type LowStockRequest struct {
	Threshold *int64 `json:"threshold" binding:"omitempty,min=0"`
}

// FinalizeRequest names the printer to try first; empty uses the default.
type FinalizeRequest struct {
	Printer string `json:"printer"`
}

// BillFilterRequest represents bill archive filter parameters. Dates are
// YYYY-MM-DD and inclusive.
type BillFilterRequest struct {
	Search    string `form:"search"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// PathRequest names a file inside the server's data directory.
type PathRequest struct {
	Path string `json:"path" binding:"required"`
}

// MergeRequest lists archived bills to combine into one PDF.
type MergeRequest struct {
	Bills  []string `json:"bills" binding:"required,min=1"`
	Output string   `json:"output" binding:"required"`
}
