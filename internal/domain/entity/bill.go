package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillRecord is the archived copy of a finalized bill. It is written once
// and never updated.
type BillRecord struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillNumber    string          `gorm:"size:50;not null;uniqueIndex" json:"bill_number"`
	Sequence      int64           `gorm:"not null;index" json:"sequence"`
	IssuedAt      time.Time       `gorm:"not null;index" json:"issued_at"`
	CustomerName  string          `gorm:"size:255" json:"customer_name"`
	CustomerPhone string          `gorm:"size:50" json:"customer_phone,omitempty"`
	GSTPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"gst_percent"`
	SubTotal      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"sub_total"`
	GSTAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"gst_amount"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total"`
	Paid          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"paid"`
	Due           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"due"`
	OutputPath    string          `gorm:"size:500" json:"output_path,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	// Relationships
	Items []BillItem `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *BillRecord) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillRecord model
func (BillRecord) TableName() string {
	return "bills"
}

// BillItem is one line of an archived bill.
type BillItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	Position        int             `gorm:"not null" json:"position"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	MRP             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"mrp"`
	Rate            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"rate"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	Quantity        int64           `gorm:"not null;default:0" json:"quantity"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"line_total"`
}

// BeforeCreate generates a UUID before creating a new bill item
func (i *BillItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}
