package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReceipt(t *testing.T) {
	svc := NewPrinterService(printer.NewRegistry(), testHeader(), 32, time.Second, logger.Nop())
	r := &entity.Receipt{
		Header:     testHeader(),
		BillNumber: "BILL-000007",
		Date:       fixedClock()(),
		Customer:   "Asha",
		Items: []entity.ReceiptItem{
			{Name: "Pen", Rate: decimal.NewFromInt(10), Quantity: 10, Total: decimal.NewFromInt(95)},
		},
		SubTotal:   decimal.NewFromInt(95),
		GSTPercent: decimal.NewFromInt(18),
		GST:        decimal.RequireFromString("17.10"),
		Total:      decimal.RequireFromString("112.10"),
	}

	out := string(svc.FormatReceipt(r))
	assert.Contains(t, out, "Lakshmi Textiles")
	assert.Contains(t, out, "BILL-000007")
	assert.Contains(t, out, "09-03-2024 17:05")
	assert.Contains(t, out, "Pen")
	assert.Contains(t, out, "112.10")
}

func TestPrinterStatusAndTestPrint(t *testing.T) {
	good := &fakePrinter{}
	bad := &fakePrinter{err: errOffline}
	reg := newRegistry(t, map[string]printer.Printer{"counter": good, "back": bad}, "counter")
	svc := NewPrinterService(reg, testHeader(), 32, time.Second, logger.Nop())

	status := svc.GetStatus()
	require.Len(t, status, 2)
	assert.Equal(t, "back", status[0].Name)
	assert.False(t, status[0].Connected)
	assert.True(t, status[1].Default)

	_, err := svc.TestPrint(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, int32(1), good.calls.Load())
	job := good.last.Load()
	assert.True(t, strings.HasSuffix(job.Path, "test.pdf"))
	assert.NotEmpty(t, job.Raw)

	_, err = svc.TestPrint(context.Background(), "back")
	assert.True(t, apperror.IsKind(err, apperror.KindOutput))
	assert.ErrorIs(t, err, errOffline)

	_, err = svc.TestPrint(context.Background(), "attic")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestTestPrintWithoutPrinters(t *testing.T) {
	svc := NewPrinterService(printer.NewRegistry(), testHeader(), 32, time.Second, logger.Nop())
	assert.Equal(t, []string{printer.NoPrintersFound}, svc.ListPrinters())
	assert.Empty(t, svc.GetStatus())

	_, err := svc.TestPrint(context.Background(), printer.NoPrintersFound)
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}
