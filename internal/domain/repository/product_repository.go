package repository

import (
	"context"

	"github.com/sangkips/billdesk/internal/domain/entity"
)

// ProductRepository is the authoritative product master. Products are
// addressed by name, compared case-insensitively.
type ProductRepository interface {
	// Upsert updates every field of the product with the same name, or
	// inserts it when there is none.
	Upsert(ctx context.Context, product *entity.Product) error
	// GetByName returns (nil, nil) when no product has that name.
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	// DeleteByName is a no-op when the product does not exist.
	DeleteByName(ctx context.Context, name string) error
	FindAll(ctx context.Context) ([]entity.Product, error)
	Count(ctx context.Context) (int64, error)
}
