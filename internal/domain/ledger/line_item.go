package ledger

import (
	"strconv"
	"strings"

	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineItem is one row of the bill. It is a value type; decimals are never
// mutated in place so copies share nothing observable.
type LineItem struct {
	Name            string          `json:"name"`
	MRP             decimal.Decimal `json:"mrp"`
	Rate            decimal.Decimal `json:"rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Quantity        int64           `json:"quantity"`
}

// Total returns round(rate × qty × (1 − discount/100), 2).
func (li LineItem) Total() decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(li.DiscountPercent.Div(hundred))
	return li.Rate.Mul(decimal.NewFromInt(li.Quantity)).Mul(factor).Round(2)
}

// ItemInput carries the raw text of a line as typed at the counter.
type ItemInput struct {
	Name     string `json:"name"`
	MRP      string `json:"mrp"`
	Rate     string `json:"rate"`
	Discount string `json:"discount"`
	Quantity string `json:"quantity"`
}

// ParseItem validates in and builds a LineItem. Empty numeric fields are 0.
func ParseItem(in ItemInput) (LineItem, error) {
	var fields []apperror.FieldError

	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields = append(fields, apperror.FieldError{Field: "name", Message: "Item name is required"})
	}

	mrp, fe := parseAmount("mrp", in.MRP)
	fields = appendField(fields, fe)
	rate, fe := parseAmount("rate", in.Rate)
	fields = appendField(fields, fe)
	disc, fe := parseAmount("discount", in.Discount)
	fields = appendField(fields, fe)
	if fe == nil && disc.GreaterThan(hundred) {
		fields = append(fields, apperror.FieldError{Field: "discount", Message: "must be between 0 and 100"})
	}
	qty, fe := parseQuantity(in.Quantity)
	fields = appendField(fields, fe)

	if len(fields) > 0 {
		return LineItem{}, apperror.NewValidationError(fields...)
	}

	return LineItem{
		Name:            name,
		MRP:             mrp,
		Rate:            rate,
		DiscountPercent: disc,
		Quantity:        qty,
	}, nil
}

func appendField(fields []apperror.FieldError, fe *apperror.FieldError) []apperror.FieldError {
	if fe == nil {
		return fields
	}
	return append(fields, *fe)
}

func parseAmount(field, raw string) (decimal.Decimal, *apperror.FieldError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &apperror.FieldError{Field: field, Message: "must be a number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &apperror.FieldError{Field: field, Message: "must not be negative"}
	}
	return d, nil
}

func parseQuantity(raw string) (int64, *apperror.FieldError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	q, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &apperror.FieldError{Field: "quantity", Message: "must be a whole number"}
	}
	if q < 0 {
		return 0, &apperror.FieldError{Field: "quantity", Message: "must not be negative"}
	}
	return q, nil
}
