package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a row of the product master. Name is the natural key; it is
// matched case-insensitively through NameKey.
type Product struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	NameKey            string          `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Name               string          `gorm:"size:255;not null" json:"name" validate:"required,max=255"`
	SKU                *string         `gorm:"size:100;index" json:"sku,omitempty" validate:"omitempty,max=100"`
	Category           *string         `gorm:"size:100" json:"category,omitempty" validate:"omitempty,max=100"`
	Brand              *string         `gorm:"size:100" json:"brand,omitempty" validate:"omitempty,max=100"`
	Size               *string         `gorm:"size:50" json:"size,omitempty" validate:"omitempty,max=50"`
	Color              *string         `gorm:"size:50" json:"color,omitempty" validate:"omitempty,max=50"`
	HSNCode            *string         `gorm:"size:20;column:hsn_code" json:"hsn_code,omitempty" validate:"omitempty,max=20"`
	MRP                decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"mrp"`
	Rate               decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"rate"`
	WholesaleRate      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"wholesale_rate"`
	SuperWholesaleRate decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"super_wholesale_rate"`
	DiscountPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	QuantityOnHand     int64           `gorm:"not null;default:0" json:"quantity_on_hand" validate:"gte=0"`
	ImagePath          *string         `gorm:"size:500" json:"image_path,omitempty"`
	Notes              *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// BeforeSave keeps the lookup key in step with the display name.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.NameKey = NameKey(p.Name)
	return nil
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// NameKey normalizes a product name for case-insensitive matching.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// StringPtr returns nil for blank strings so absent text stays NULL.
// Other text is kept as given.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// StringValue dereferences an optional text field.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
