package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/domain/repository"
	"github.com/sangkips/billdesk/internal/infrastructure/sheet"
	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/pagination"
	"github.com/shopspring/decimal"
)

// DefaultSuggestLimit caps Suggest when no limit is given.
const DefaultSuggestLimit = 20

var hundred = decimal.NewFromInt(100)

// catalogIndex is an immutable view of the product master.
type catalogIndex struct {
	byKey map[string]entity.Product
	keys  []string // sorted
}

// CatalogService fronts the product repository with an in-memory lookup
// cache for the billing counter.
type CatalogService struct {
	repo     repository.ProductRepository
	validate *validator.Validate
	index    atomic.Pointer[catalogIndex]
	log      *logger.Logger
}

// NewCatalogService creates a new catalog service. Call Reload before the
// first lookup.
func NewCatalogService(repo repository.ProductRepository, log *logger.Logger) *CatalogService {
	s := &CatalogService{
		repo:     repo,
		validate: validator.New(),
		log:      log.WithComponent("catalog"),
	}
	s.index.Store(&catalogIndex{byKey: map[string]entity.Product{}})
	return s
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LoadAll reads every product from the store, keyed by lowercase name.
func (s *CatalogService) LoadAll(ctx context.Context) (map[string]entity.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.NewPersistenceError("load products", err)
	}
	out := make(map[string]entity.Product, len(products))
	for _, p := range products {
		out[entity.NameKey(p.Name)] = p
	}
	return out, nil
}

// Reload rebuilds the cache from the store and swaps it in whole.
func (s *CatalogService) Reload(ctx context.Context) error {
	byKey, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s.index.Store(&catalogIndex{byKey: byKey, keys: keys})
	CatalogSize.Set(float64(len(keys)))
	return nil
}

// Lookup finds a product by name, ignoring case.
func (s *CatalogService) Lookup(name string) (entity.Product, bool) {
	p, ok := s.index.Load().byKey[entity.NameKey(name)]
	return p, ok
}

// List returns every cached product sorted by name.
func (s *CatalogService) List() []entity.Product {
	idx := s.index.Load()
	out := make([]entity.Product, 0, len(idx.keys))
	for _, k := range idx.keys {
		out = append(out, idx.byKey[k])
	}
	return out
}

// Count is the number of cached products.
func (s *CatalogService) Count() int {
	return len(s.index.Load().keys)
}

// Suggest returns products whose name contains fragment, sorted by name.
func (s *CatalogService) Suggest(fragment string, limit int) []entity.Product {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	needle := entity.NameKey(fragment)
	idx := s.index.Load()
	var out []entity.Product
	for _, k := range idx.keys {
		if needle != "" && !strings.Contains(k, needle) {
			continue
		}
		out = append(out, idx.byKey[k])
		if len(out) == limit {
			break
		}
	}
	return out
}

// Search pages through the cached products whose name contains term.
func (s *CatalogService) Search(term string, params *pagination.PaginationParams) *pagination.PaginatedResult[entity.Product] {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()
	needle := entity.NameKey(term)
	idx := s.index.Load()
	var matched []string
	for _, k := range idx.keys {
		if needle == "" || strings.Contains(k, needle) {
			matched = append(matched, k)
		}
	}
	var page []entity.Product
	for i := params.Offset(); i < len(matched) && len(page) < params.PerPage; i++ {
		page = append(page, idx.byKey[matched[i]])
	}
	return pagination.NewPaginatedResult(page, params, int64(len(matched)))
}

// Upsert validates and stores a product, replacing any with the same name.
func (s *CatalogService) Upsert(ctx context.Context, p *entity.Product) error {
	if err := s.validateProduct(p); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return apperror.NewPersistenceError("save product", err)
	}
	s.log.Infow("product saved", "name", p.Name)
	return s.Reload(ctx)
}

// Delete removes a product by name. Missing products are not an error.
func (s *CatalogService) Delete(ctx context.Context, name string) error {
	if err := s.repo.DeleteByName(ctx, name); err != nil {
		return apperror.NewPersistenceError("delete product", err)
	}
	s.log.Infow("product deleted", "name", name)
	return s.Reload(ctx)
}

func (s *CatalogService) validateProduct(p *entity.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	var fields []apperror.FieldError
	if err := s.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperror.NewBadRequestError(err.Error())
		}
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: fmt.Sprintf("failed on '%s'", fe.Tag()),
			})
		}
	}
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"mrp", p.MRP},
		{"rate", p.Rate},
		{"wholesale_rate", p.WholesaleRate},
		{"super_wholesale_rate", p.SuperWholesaleRate},
		{"discount_percent", p.DiscountPercent},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			fields = append(fields, apperror.FieldError{Field: a.field, Message: "must not be negative"})
		}
	}
	if p.DiscountPercent.GreaterThan(hundred) {
		fields = append(fields, apperror.FieldError{Field: "discount_percent", Message: "must be between 0 and 100"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields...)
	}
	return nil
}

// ImportFile loads a .csv or .xlsx product master and upserts every row.
func (s *CatalogService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	if _, err := sheet.FormatOf(path); err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	rows, err := sheet.ReadProductsFile(path)
	if err != nil {
		return nil, apperror.NewBadRequestError("Could not read import file: " + err.Error())
	}
	return s.ImportRows(ctx, rows)
}

// ImportRows upserts parsed rows one by one. Rows without a name and rows
// the store rejects are reported and skipped; the cache is rebuilt once.
func (s *CatalogService) ImportRows(ctx context.Context, rows []sheet.Row) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(rows)}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if row.Err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: row.Line, Message: "Unreadable row: " + row.Err.Error()})
			continue
		}
		p := row.Product
		if strings.TrimSpace(p.Name) == "" {
			result.Errors = append(result.Errors, ImportRowError{Row: row.Line, Field: "name", Message: "Name is required"})
			continue
		}
		if err := s.validateProduct(&p); err != nil {
			result.Errors = append(result.Errors, rowErrors(row.Line, err)...)
			continue
		}
		if err := s.repo.Upsert(ctx, &p); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: row.Line, Field: "name", Message: "Failed to save: " + err.Error()})
			continue
		}
		result.Successful++
	}
	result.Failed = len(rows) - result.Successful
	CatalogImportRows.WithLabelValues("ok").Add(float64(result.Successful))
	CatalogImportRows.WithLabelValues("failed").Add(float64(result.Failed))

	s.log.Infow("catalog import finished",
		"rows", result.TotalRows, "successful", result.Successful, "failed", result.Failed)

	if err := s.Reload(ctx); err != nil {
		return result, err
	}
	return result, nil
}

func rowErrors(line int, err error) []ImportRowError {
	appErr := apperror.GetAppError(err)
	if len(appErr.Errors) == 0 {
		return []ImportRowError{{Row: line, Message: appErr.Message}}
	}
	out := make([]ImportRowError, len(appErr.Errors))
	for i, fe := range appErr.Errors {
		out[i] = ImportRowError{Row: line, Field: fe.Field, Message: fe.Message}
	}
	return out
}

// ExportFile writes every product, sorted by name, to a .csv or .xlsx file.
func (s *CatalogService) ExportFile(ctx context.Context, path string) (int, error) {
	if _, err := sheet.FormatOf(path); err != nil {
		return 0, apperror.NewBadRequestError(err.Error())
	}
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, apperror.NewPersistenceError("load products", err)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return entity.NameKey(products[i].Name) < entity.NameKey(products[j].Name)
	})
	if err := sheet.WriteProductsFile(path, products); err != nil {
		return 0, apperror.NewPersistenceError("export products", err)
	}
	s.log.Infow("catalog exported", "path", path, "products", len(products))
	return len(products), nil
}
