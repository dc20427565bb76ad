// Package document renders receipts as fixed-width text and as paginated
// PDF documents. Amounts arrive precomputed on the receipt; nothing here
// does arithmetic on money.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const (
	// TextWidth is the width of the text receipt in characters.
	TextWidth = 60

	// DateLayout formats the bill date as dd-mm-YYYY HH:MM.
	DateLayout = "02-01-2006 15:04"

	itemColumnWidth = 20
)

// RenderText returns the receipt as a fixed-width, 60-column text block.
func RenderText(r *entity.Receipt) string {
	var b strings.Builder
	heavy := strings.Repeat("=", TextWidth)
	light := strings.Repeat("-", TextWidth)

	for _, line := range headerLines(r.Header) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(heavy + "\n")
	fmt.Fprintf(&b, "Bill No: %-10s Date: %s\n", r.BillNumber, formatDate(r.Date))
	if line := customerLine(r); line != "" {
		b.WriteString(line + "\n")
	}
	b.WriteString(heavy + "\n")
	fmt.Fprintf(&b, "%-20s%6s%7s%7s%6s%9s\n", "Item", "MRP", "Rate", "Disc%", "Qty", "Total")
	b.WriteString(light + "\n")
	for _, it := range r.Items {
		fmt.Fprintf(&b, "%-20s%6s%7s%7s%6d%9s\n",
			truncate(it.Name, itemColumnWidth),
			Money(it.MRP),
			Money(it.Rate),
			Money(it.DiscountPercent),
			it.Quantity,
			Money(it.Total),
		)
	}
	b.WriteString(light + "\n")
	for _, line := range totalLines(r) {
		b.WriteString(line + "\n")
	}
	b.WriteString(heavy + "\n")
	return b.String()
}

// Money formats an amount with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func headerLines(h entity.ReceiptHeader) []string {
	var lines []string
	for _, s := range []string{h.StoreName, h.Address, h.Phone} {
		if s != "" {
			lines = append(lines, s)
		}
	}
	if h.TaxID != "" {
		lines = append(lines, "GSTIN: "+h.TaxID)
	}
	return lines
}

func customerLine(r *entity.Receipt) string {
	switch {
	case r.Customer != "" && r.CustomerPhone != "":
		return fmt.Sprintf("Customer: %s  Phone: %s", r.Customer, r.CustomerPhone)
	case r.Customer != "":
		return "Customer: " + r.Customer
	default:
		return ""
	}
}

func totalLines(r *entity.Receipt) []string {
	return []string{
		"SubTotal: " + Money(r.SubTotal),
		fmt.Sprintf("GST (%s%%): %s", r.GSTPercent.String(), Money(r.GST)),
		"Total: " + Money(r.Total),
		fmt.Sprintf("Paid: %s  Due: %s", Money(r.Paid), Money(r.Due)),
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
