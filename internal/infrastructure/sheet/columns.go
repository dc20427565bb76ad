// Package sheet reads and writes the product master and bill exports as
// delimited text and spreadsheets.
package sheet

import (
	"strings"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type field int

const (
	fieldName field = iota
	fieldSKU
	fieldCategory
	fieldBrand
	fieldSize
	fieldColor
	fieldHSN
	fieldMRP
	fieldRate
	fieldWholesale
	fieldSuperWholesale
	fieldDiscount
	fieldQty
	fieldImagePath
	fieldNotes
	fieldCount
)

// Header is the column order written by every product export.
var Header = []string{
	"name", "sku", "category", "brand", "size", "color", "hsn", "mrp",
	"rate", "wholesale", "super_wholesale", "discount", "qty", "image_path", "notes",
}

var aliases = [fieldCount][]string{
	fieldName:           {"name", "item", "item_name", "product", "product_name", "description"},
	fieldSKU:            {"sku", "code", "product_code", "barcode"},
	fieldCategory:       {"category"},
	fieldBrand:          {"brand"},
	fieldSize:           {"size"},
	fieldColor:          {"color", "colour"},
	fieldHSN:            {"hsn", "hsn_code", "hsncode"},
	fieldMRP:            {"mrp", "price"},
	fieldRate:           {"rate", "selling_price", "sale_price"},
	fieldWholesale:      {"wholesale", "wholesale_rate"},
	fieldSuperWholesale: {"super_wholesale", "super_wholesale_rate"},
	fieldDiscount:       {"discount", "discount_percent", "disc"},
	fieldQty:            {"qty", "quantity", "stock", "quantity_on_hand"},
	fieldImagePath:      {"image_path", "image"},
	fieldNotes:          {"notes", "remarks"},
}

// Row is one parsed data row. Line is the 1-based line in the source,
// counting the header as line 1. Err is set when the record itself could
// not be parsed; Product is then empty.
type Row struct {
	Line    int
	Product entity.Product
	Err     error
}

// columnMap resolves each field to a column index, -1 when absent.
type columnMap [fieldCount]int

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Join(strings.Fields(h), "_")
}

func mapColumns(header []string) columnMap {
	var m columnMap
	for f := range m {
		m[f] = -1
	}
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}
	for f := field(0); f < fieldCount; f++ {
	search:
		for _, alias := range aliases[f] {
			for i, h := range normalized {
				if h == alias {
					m[f] = i
					break search
				}
			}
		}
	}
	return m
}

func (m columnMap) cell(record []string, f field) string {
	return strings.TrimSpace(m.raw(record, f))
}

// raw returns the cell untouched, for free text that must round-trip.
func (m columnMap) raw(record []string, f field) string {
	i := m[f]
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// toDecimal coerces a cell to a non-negative amount; anything else is 0.
func toDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// toQuantity accepts whole numbers written as "42" or "42.0".
func toQuantity(s string) int64 {
	d := toDecimal(s)
	if !d.Equal(d.Truncate(0)) {
		return 0
	}
	return d.IntPart()
}

func (m columnMap) product(record []string) entity.Product {
	return entity.Product{
		Name:               m.cell(record, fieldName),
		SKU:                entity.StringPtr(m.cell(record, fieldSKU)),
		Category:           entity.StringPtr(m.cell(record, fieldCategory)),
		Brand:              entity.StringPtr(m.cell(record, fieldBrand)),
		Size:               entity.StringPtr(m.cell(record, fieldSize)),
		Color:              entity.StringPtr(m.cell(record, fieldColor)),
		HSNCode:            entity.StringPtr(m.cell(record, fieldHSN)),
		MRP:                toDecimal(m.cell(record, fieldMRP)),
		Rate:               toDecimal(m.cell(record, fieldRate)),
		WholesaleRate:      toDecimal(m.cell(record, fieldWholesale)),
		SuperWholesaleRate: toDecimal(m.cell(record, fieldSuperWholesale)),
		DiscountPercent:    toDecimal(m.cell(record, fieldDiscount)),
		QuantityOnHand:     toQuantity(m.cell(record, fieldQty)),
		ImagePath:          entity.StringPtr(m.raw(record, fieldImagePath)),
		Notes:              entity.StringPtr(m.raw(record, fieldNotes)),
	}
}

// parseRecords turns a header plus data records into rows. Entirely empty
// records are dropped; rows with an empty name are kept so the caller can
// report them.
func parseRecords(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}
	m := mapColumns(records[0])
	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		rows = append(rows, Row{Line: i + 2, Product: m.product(record)})
	}
	return rows
}

// money writes two decimals, or every digit when the amount carries more.
func money(d decimal.Decimal) string {
	if d.Exponent() < -2 {
		return d.String()
	}
	return d.StringFixed(2)
}

func productRecord(p *entity.Product) []string {
	return []string{
		p.Name,
		entity.StringValue(p.SKU),
		entity.StringValue(p.Category),
		entity.StringValue(p.Brand),
		entity.StringValue(p.Size),
		entity.StringValue(p.Color),
		entity.StringValue(p.HSNCode),
		money(p.MRP),
		money(p.Rate),
		money(p.WholesaleRate),
		money(p.SuperWholesaleRate),
		money(p.DiscountPercent),
		decimal.NewFromInt(p.QuantityOnHand).String(),
		entity.StringValue(p.ImagePath),
		entity.StringValue(p.Notes),
	}
}
