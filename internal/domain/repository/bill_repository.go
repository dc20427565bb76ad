package repository

import (
	"context"
	"time"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/pkg/pagination"
)

// BillRepository archives finalized bills. There is no update: a bill is
// written once with its items.
type BillRepository interface {
	Create(ctx context.Context, bill *entity.BillRecord) error
	// GetByNumber returns the bill with its items, or (nil, nil).
	GetByNumber(ctx context.Context, number string) (*entity.BillRecord, error)
	List(ctx context.Context, params *BillFilterParams) ([]entity.BillRecord, int64, error)
	// FindAllWithItems is used by exports and backups.
	FindAllWithItems(ctx context.Context) ([]entity.BillRecord, error)
}

// BillFilterParams contains filtering parameters for bill queries
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
}
