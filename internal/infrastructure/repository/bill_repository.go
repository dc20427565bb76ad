package repository

import (
	"context"
	"errors"

	"github.com/sangkips/billdesk/internal/domain/entity"
	domainRepo "github.com/sangkips/billdesk/internal/domain/repository"
	"github.com/sangkips/billdesk/pkg/pagination"
	"gorm.io/gorm"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

// Create stores the bill and its items in one transaction.
func (r *billRepository) Create(ctx context.Context, bill *entity.BillRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := bill.Items
		bill.Items = nil
		if err := tx.Create(bill).Error; err != nil {
			bill.Items = items
			return err
		}
		for i := range items {
			items[i].BillID = bill.ID
			items[i].Position = i + 1
		}
		bill.Items = items
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&bill.Items).Error
	})
}

func (r *billRepository) GetByNumber(ctx context.Context, number string) (*entity.BillRecord, error) {
	var bill entity.BillRecord
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&bill, "bill_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.BillRecord, int64, error) {
	var bills []entity.BillRecord
	var total int64

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}

	query := r.db.WithContext(ctx).Model(&entity.BillRecord{}).
		Scopes(
			Search(params.Search, "bill_number", "customer_name", "customer_phone"),
			Between("issued_at", params.StartDate, params.EndDate),
		)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("sequence DESC").
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) FindAllWithItems(ctx context.Context) ([]entity.BillRecord, error) {
	var bills []entity.BillRecord
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Order("sequence ASC").
		Find(&bills).Error
	return bills, err
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
