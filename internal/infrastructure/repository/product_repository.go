package repository

import (
	"context"
	"errors"

	"github.com/sangkips/billdesk/internal/domain/entity"
	domainRepo "github.com/sangkips/billdesk/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productUpdateColumns are overwritten when an upsert hits an existing name.
var productUpdateColumns = []string{
	"name", "sku", "category", "brand", "size", "color", "hsn_code",
	"mrp", "rate", "wholesale_rate", "super_wholesale_rate", "discount_percent",
	"quantity_on_hand", "image_path", "notes", "updated_at",
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Upsert(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name_key"}},
		DoUpdates: clause.AssignmentColumns(productUpdateColumns),
	}).Create(product).Error
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "name_key = ?", entity.NameKey(name)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) DeleteByName(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).
		Where("name_key = ?", entity.NameKey(name)).
		Delete(&entity.Product{}).Error
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Order("name_key ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&count).Error
	return count, err
}
