package service

import (
	"context"
	"strings"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/domain/repository"
	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/pagination"
	"github.com/ttacon/libphonenumber"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	region       string
	log          *logger.Logger
}

// NewCustomerService creates a new customer service. region is the
// default country for numbers typed without a country code, e.g. "IN".
func NewCustomerService(customerRepo repository.CustomerRepository, region string, log *logger.Logger) *CustomerService {
	if region == "" {
		region = "IN"
	}
	return &CustomerService{
		customerRepo: customerRepo,
		region:       strings.ToUpper(region),
		log:          log.WithComponent("customers"),
	}
}

// NormalizePhone parses a phone number and returns it in E.164 form.
func NormalizePhone(raw, region string) (string, error) {
	num, err := libphonenumber.Parse(strings.TrimSpace(raw), region)
	if err != nil {
		return "", apperror.NewFieldError("phone", "is not a phone number")
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", apperror.NewFieldError("phone", "is not a valid phone number")
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

// SaveCustomer stores a customer by phone number; saving an existing
// number renames that customer.
func (s *CustomerService) SaveCustomer(ctx context.Context, name, phone string) (*entity.Customer, error) {
	name = strings.TrimSpace(name)
	var fields []apperror.FieldError
	if name == "" {
		fields = append(fields, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(phone) == "" {
		fields = append(fields, apperror.FieldError{Field: "phone", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidationError(fields...)
	}

	normalized, err := NormalizePhone(phone, s.region)
	if err != nil {
		return nil, err
	}

	customer := &entity.Customer{Name: name, Phone: normalized}
	if err := s.customerRepo.Upsert(ctx, customer); err != nil {
		return nil, apperror.NewPersistenceError("save customer", err)
	}
	saved, err := s.customerRepo.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, apperror.NewPersistenceError("load customer", err)
	}
	if saved == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	s.log.Infow("customer saved", "phone", normalized)
	return saved, nil
}

// GetByPhone finds a customer by any spelling of their phone number.
func (s *CustomerService) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	normalized, err := NormalizePhone(phone, s.region)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, apperror.NewPersistenceError("load customer", err)
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers by name.
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, apperror.NewPersistenceError("list customers", err)
	}
	return pagination.NewPaginatedResult(customers, params, total), nil
}
