package request

import (
	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRequest creates or replaces the product with the same name.
type ProductRequest struct {
	Name               string          `json:"name" binding:"required,max=255"`
	SKU                string          `json:"sku" binding:"max=100"`
	Category           string          `json:"category" binding:"max=100"`
	Brand              string          `json:"brand" binding:"max=100"`
	Size               string          `json:"size" binding:"max=50"`
	Color              string          `json:"color" binding:"max=50"`
	HSNCode            string          `json:"hsn_code" binding:"max=20"`
	MRP                decimal.Decimal `json:"mrp"`
	Rate               decimal.Decimal `json:"rate"`
	WholesaleRate      decimal.Decimal `json:"wholesale_rate"`
	SuperWholesaleRate decimal.Decimal `json:"super_wholesale_rate"`
	DiscountPercent    decimal.Decimal `json:"discount_percent"`
	QuantityOnHand     int64           `json:"quantity_on_hand" binding:"min=0"`
	ImagePath          string          `json:"image_path"`
	Notes              string          `json:"notes"`
}

func (r ProductRequest) ToEntity() *entity.Product {
	return &entity.Product{
		Name:               r.Name,
		SKU:                entity.StringPtr(r.SKU),
		Category:           entity.StringPtr(r.Category),
		Brand:              entity.StringPtr(r.Brand),
		Size:               entity.StringPtr(r.Size),
		Color:              entity.StringPtr(r.Color),
		HSNCode:            entity.StringPtr(r.HSNCode),
		MRP:                r.MRP,
		Rate:               r.Rate,
		WholesaleRate:      r.WholesaleRate,
		SuperWholesaleRate: r.SuperWholesaleRate,
		DiscountPercent:    r.DiscountPercent,
		QuantityOnHand:     r.QuantityOnHand,
		ImagePath:          entity.StringPtr(r.ImagePath),
		Notes:              entity.StringPtr(r.Notes),
	}
}

// ProductSuggestRequest represents the type-ahead query.
type ProductSuggestRequest struct {
	Query string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=200"`
}
