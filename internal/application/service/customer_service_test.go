package service

import (
	"context"
	"testing"

	infraRepo "github.com/sangkips/billdesk/internal/infrastructure/repository"
	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomers(t *testing.T) *CustomerService {
	return NewCustomerService(infraRepo.NewCustomerRepository(newTestDB(t)), "IN", logger.Nop())
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("081234 56789", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+918123456789", got)

	got, err = NormalizePhone("+91 81234-56789", "US")
	require.NoError(t, err)
	assert.Equal(t, "+918123456789", got)

	_, err = NormalizePhone("12345", "IN")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = NormalizePhone("not a phone", "IN")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSaveCustomer(t *testing.T) {
	ctx := context.Background()
	s := newTestCustomers(t)

	c, err := s.SaveCustomer(ctx, "Asha", "8123456789")
	require.NoError(t, err)
	assert.Equal(t, "+918123456789", c.Phone)

	c, err = s.SaveCustomer(ctx, "Asha Kumari", "+91 81234 56789")
	require.NoError(t, err)
	assert.Equal(t, "Asha Kumari", c.Name)

	found, err := s.GetByPhone(ctx, "08123456789")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)

	list, err := s.ListCustomers(ctx, pagination.DefaultPagination(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Pagination.Total)
}

func TestSaveCustomerRequiresNameAndPhone(t *testing.T) {
	_, err := newTestCustomers(t).SaveCustomer(context.Background(), " ", "")
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Errors, 2)
}

func TestGetByPhoneMissing(t *testing.T) {
	_, err := newTestCustomers(t).GetByPhone(context.Background(), "8123456789")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
