package repository

import (
	"context"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/pkg/pagination"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// Upsert inserts the customer or renames the one with the same phone.
	Upsert(ctx context.Context, customer *entity.Customer) error
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
	FindAll(ctx context.Context) ([]entity.Customer, error)
}
