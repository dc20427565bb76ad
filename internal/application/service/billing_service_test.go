package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/domain/enum"
	"github.com/sangkips/billdesk/internal/domain/ledger"
	"github.com/sangkips/billdesk/internal/domain/repository"
	"github.com/sangkips/billdesk/internal/infrastructure/document"
	infraRepo "github.com/sangkips/billdesk/internal/infrastructure/repository"
	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/numerator"
	"github.com/sangkips/billdesk/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type billingFixture struct {
	svc      *BillingService
	numbers  *numerator.Service
	bills    repository.BillRepository
	catalog  *CatalogService
	outDir   string
	opener   *fakeOpener
	rendered []string
}

func newBillingFixture(t *testing.T, bills repository.BillRepository) *billingFixture {
	t.Helper()
	return newBillingFixtureWithRegistry(t, bills, newRegistry(t, nil, ""))
}

func newBillingFixtureWithRegistry(t *testing.T, bills repository.BillRepository, reg *printer.Registry) *billingFixture {
	t.Helper()
	db := newTestDB(t)
	if bills == nil {
		bills = infraRepo.NewBillRepository(db)
	}
	dir := t.TempDir()
	f := &billingFixture{
		numbers: numerator.New(numerator.DefaultConfig(filepath.Join(dir, "bill_counter.txt"))),
		bills:   bills,
		catalog: NewCatalogService(infraRepo.NewProductRepository(db), logger.Nop()),
		outDir:  filepath.Join(dir, "bills_pdf"),
		opener:  &fakeOpener{},
	}
	f.svc = NewBillingService(
		f.numbers,
		f.bills,
		f.catalog,
		NewPrinterService(reg, testHeader(), 32, time.Second, logger.Nop()),
		NewDispatchService(reg, f.opener, time.Second, logger.Nop()),
		BillingOptions{
			Header:            testHeader(),
			Ledger:            ledger.Options{DefaultGST: decimal.NewFromInt(18)},
			LowStockThreshold: 2,
			OutputDir:         f.outDir,
			Now:               fixedClock(),
			RenderPDF: func(path string, r *entity.Receipt) error {
				f.rendered = append(f.rendered, path)
				return os.WriteFile(path, []byte("%PDF-1.3 "+r.BillNumber), 0o644)
			},
		},
		logger.Nop(),
	)
	return f
}

func addScenario(t *testing.T, s *BillingService) *BillView {
	t.Helper()
	_, err := s.AddItem(ledger.ItemInput{Name: "Pen", MRP: "12", Rate: "10", Discount: "5", Quantity: "10"})
	require.NoError(t, err)
	v, err := s.AddItem(ledger.ItemInput{Name: "Notebook", MRP: "60", Rate: "50", Quantity: "3"})
	require.NoError(t, err)
	return v
}

func TestBillingScenarioTotals(t *testing.T) {
	f := newBillingFixture(t, nil)
	v := addScenario(t, f.svc)

	assert.Equal(t, "245.00", v.Totals.SubTotal.StringFixed(2))
	assert.Equal(t, "44.10", v.Totals.GSTAmount.StringFixed(2))
	assert.Equal(t, "289.10", v.Totals.Total.StringFixed(2))
	require.Len(t, v.Items, 2)
	assert.Equal(t, "95.00", v.Items[0].Total.StringFixed(2))
	assert.False(t, v.Items[0].LowStock)
	assert.True(t, v.CanUndo)

	v, err := f.svc.SetPaid(decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.Equal(t, "-10.90", v.Totals.Due.StringFixed(2))

	_, err = f.svc.SetPaid(decimal.NewFromInt(-1))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestBillingEditsAndUndo(t *testing.T) {
	f := newBillingFixture(t, nil)
	addScenario(t, f.svc)

	v, err := f.svc.MoveItem(1, ledger.Up)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", v.Items[0].Name)

	v, err = f.svc.DuplicateItem(0)
	require.NoError(t, err)
	assert.Len(t, v.Items, 3)

	_, err = f.svc.DeleteItem(7)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	v, ok := f.svc.Undo()
	assert.True(t, ok)
	assert.Len(t, v.Items, 2)

	v, ok = f.svc.Redo()
	assert.True(t, ok)
	assert.Len(t, v.Items, 3)

	v = f.svc.Clear()
	assert.Empty(t, v.Items)
	assert.Equal(t, "Customer", v.CustomerName)
}

func TestBillingRemoveLowStock(t *testing.T) {
	f := newBillingFixture(t, nil)
	_, err := f.svc.AddItem(ledger.ItemInput{Name: "Last piece", Rate: "10", Quantity: "1"})
	require.NoError(t, err)
	v, err := f.svc.AddItem(ledger.ItemInput{Name: "Plenty", Rate: "10", Quantity: "9"})
	require.NoError(t, err)
	assert.True(t, v.Items[0].LowStock)

	v, removed := f.svc.RemoveLowStock(nil)
	assert.Equal(t, 1, removed)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "Plenty", v.Items[0].Name)

	threshold := int64(9)
	_, removed = f.svc.RemoveLowStock(&threshold)
	assert.Equal(t, 1, removed)
}

func TestBillingAddFromCatalog(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, nil)
	require.NoError(t, f.catalog.Upsert(ctx, &entity.Product{
		Name:            "Saree A",
		MRP:             decimal.RequireFromString("1200"),
		Rate:            decimal.RequireFromString("999.50"),
		DiscountPercent: decimal.RequireFromString("10"),
	}))

	v, err := f.svc.AddFromCatalog("saree a", "")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "Saree A", v.Items[0].Name)
	assert.Equal(t, int64(1), v.Items[0].Quantity)
	assert.Equal(t, "899.55", v.Items[0].Total.StringFixed(2))

	_, err = f.svc.AddFromCatalog("missing", "1")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestBillingPreviewDoesNotAllocate(t *testing.T) {
	f := newBillingFixture(t, nil)
	addScenario(t, f.svc)

	p := f.svc.Preview()
	assert.Equal(t, DraftNumber, p.Receipt.BillNumber)
	assert.Contains(t, p.Text, "Bill No: DRAFT")
	assert.Contains(t, p.Text, "Total: 289.10")

	last, err := f.numbers.Peek()
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestBillingFinalizeEmpty(t *testing.T) {
	f := newBillingFixture(t, nil)
	_, err := f.svc.Finalize(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrEmptyBill)

	last, err := f.numbers.Peek()
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestBillingFinalize(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, nil)
	addScenario(t, f.svc)
	f.svc.SetCustomer("Asha", "+918123456789")

	res, err := f.svc.Finalize(ctx, printer.NoPrintersFound)
	require.NoError(t, err)
	assert.Equal(t, "BILL-000001", res.BillNumber)
	assert.Equal(t, filepath.Join(f.outDir, "001.pdf"), res.Path)
	assert.Equal(t, []string{res.Path}, f.rendered)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, enum.DispatchTierManualOpen, res.Outcome.Tier)
	assert.Equal(t, []string{res.Path}, f.opener.opened)
	assert.Contains(t, res.Text, "Bill No: BILL-000001")

	stored, err := f.svc.GetBill(ctx, "BILL-000001")
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.CustomerName)
	assert.Equal(t, "289.10", stored.Total.StringFixed(2))
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Pen", stored.Items[0].Name)
	assert.Equal(t, "95.00", stored.Items[0].LineTotal.StringFixed(2))

	v := f.svc.View()
	assert.Empty(t, v.Items)
	assert.False(t, v.CanUndo)
	assert.Equal(t, "Customer", v.CustomerName)

	addScenario(t, f.svc)
	res, err = f.svc.Finalize(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "BILL-000002", res.BillNumber)
	assert.Equal(t, filepath.Join(f.outDir, "002.pdf"), res.Path)

	list, err := f.svc.ListBills(ctx, &repository.BillFilterParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Equal(t, "BILL-000002", list.Items[0].BillNumber)
}

type failingBills struct {
	repository.BillRepository
}

func (failingBills) Create(context.Context, *entity.BillRecord) error {
	return errors.New("disk full")
}

func TestBillingFinalizePersistenceFailureKeepsBill(t *testing.T) {
	f := newBillingFixture(t, failingBills{})
	addScenario(t, f.svc)

	_, err := f.svc.Finalize(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence))

	v := f.svc.View()
	assert.Len(t, v.Items, 2)
	require.Len(t, f.rendered, 1)
	assert.NoFileExists(t, f.rendered[0])
}

func TestBillingFinalizeCorruptCounterKeepsBill(t *testing.T) {
	f := newBillingFixture(t, nil)
	counter := filepath.Join(filepath.Dir(f.outDir), "bill_counter.txt")
	require.NoError(t, os.WriteFile(counter, []byte("12x"), 0o644))
	addScenario(t, f.svc)

	_, err := f.svc.Finalize(context.Background(), "")
	require.ErrorIs(t, err, numerator.ErrCorruptCounter)
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence))
	assert.Len(t, f.svc.View().Items, 2)
	assert.Empty(t, f.rendered)
}

func TestBillingFinalizeRenderFailure(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, nil)
	f.svc.opts.RenderPDF = func(string, *entity.Receipt) error { return errors.New("font missing") }
	addScenario(t, f.svc)

	res, err := f.svc.Finalize(ctx, "")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindOutput))
	require.NotNil(t, res)
	assert.Equal(t, "BILL-000001", res.BillNumber)

	txt := filepath.Join(f.outDir, "001.txt")
	assert.Equal(t, txt, res.Path)
	assert.NoFileExists(t, filepath.Join(f.outDir, "001.pdf"))
	data, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total: 289.10")

	require.NotNil(t, res.Outcome)
	assert.Equal(t, enum.DispatchTierManualOpen, res.Outcome.Tier)
	assert.Equal(t, []string{txt}, f.opener.opened)

	bill, err := f.svc.GetBill(ctx, "BILL-000001")
	require.NoError(t, err)
	assert.Equal(t, txt, bill.OutputPath)
	assert.Empty(t, f.svc.View().Items)

	// The text fallback keeps its number: the next document is 002.
	f.svc.opts.RenderPDF = func(path string, r *entity.Receipt) error {
		return os.WriteFile(path, []byte("%PDF-1.3 "+r.BillNumber), 0o644)
	}
	addScenario(t, f.svc)
	res, err = f.svc.Finalize(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.outDir, "002.pdf"), res.Path)
}

func TestBillingRenderFailureStillPrintsRaw(t *testing.T) {
	counter := &fakePrinter{}
	f := newBillingFixtureWithRegistry(t, nil, newRegistry(t, map[string]printer.Printer{"counter": counter}, "counter"))
	f.svc.opts.RenderPDF = func(string, *entity.Receipt) error { return errors.New("disk full") }
	addScenario(t, f.svc)

	res, err := f.svc.Finalize(context.Background(), "")
	assert.True(t, apperror.IsKind(err, apperror.KindOutput))
	require.NotNil(t, res.Outcome)
	assert.Equal(t, enum.DispatchTierDefault, res.Outcome.Tier)
	assert.True(t, res.Outcome.Delivered)

	job := counter.last.Load()
	require.NotNil(t, job)
	assert.NotEmpty(t, job.Raw)
	assert.Equal(t, filepath.Join(f.outDir, "001.txt"), job.Path)
	assert.Empty(t, f.opener.opened)
}

func TestBillingFinalizeNotDispatched(t *testing.T) {
	f := newBillingFixture(t, nil)
	f.opener.err = errors.New("no display")
	addScenario(t, f.svc)

	res, err := f.svc.Finalize(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrNotDispatched)
	require.NotNil(t, res)
	assert.Equal(t, enum.DispatchTierSaved, res.Outcome.Tier)
	assert.FileExists(t, res.Path)
}

func TestBillingReprint(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, nil)
	addScenario(t, f.svc)
	_, err := f.svc.Finalize(ctx, "")
	require.NoError(t, err)

	res, err := f.svc.Reprint(ctx, "BILL-000001", "")
	require.NoError(t, err)
	assert.Equal(t, "BILL-000001", res.BillNumber)
	assert.Equal(t, filepath.Join(f.outDir, "002.pdf"), res.Path)
	assert.Contains(t, res.Text, "Total: 289.10")

	byseq, err := f.svc.GetBill(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "BILL-000001", byseq.BillNumber)

	_, err = f.svc.Reprint(ctx, "BILL-000404", "")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestBillingExportBills(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, nil)
	addScenario(t, f.svc)
	_, err := f.svc.Finalize(ctx, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "exports", "bills.xlsx")
	n, err := f.svc.ExportBills(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Items")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = f.svc.ExportBills(ctx, "bills.csv")
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}

func TestBillingMergeBillsAndText(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, nil)
	f.svc.opts.RenderPDF = document.WritePDF
	for range 2 {
		addScenario(t, f.svc)
		_, err := f.svc.Finalize(ctx, "")
		require.NoError(t, err)
	}

	out := filepath.Join(t.TempDir(), "day.pdf")
	pages, err := f.svc.MergeBills(ctx, []string{"1", "BILL-000002"}, out)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.FileExists(t, out)

	text, err := f.svc.BillText(ctx, "BILL-000001")
	require.NoError(t, err)
	assert.Contains(t, text, "BILL-000001")

	_, err = f.svc.MergeBills(ctx, nil, out)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	_, err = f.svc.MergeBills(ctx, []string{"1"}, filepath.Join(t.TempDir(), "day.txt"))
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	_, err = f.svc.MergeBills(ctx, []string{"BILL-000404"}, out)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	require.NoError(t, os.Remove(filepath.Join(f.outDir, "002.pdf")))
	_, err = f.svc.BillText(ctx, "2")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestBillingTextOfTextFallback(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, nil)
	f.svc.opts.RenderPDF = func(string, *entity.Receipt) error { return errors.New("font missing") }
	addScenario(t, f.svc)
	_, err := f.svc.Finalize(ctx, "")
	require.Error(t, err)

	text, err := f.svc.BillText(ctx, "1")
	require.NoError(t, err)
	assert.Contains(t, text, "Total: 289.10")

	_, err = f.svc.MergeBills(ctx, []string{"1"}, filepath.Join(t.TempDir(), "day.pdf"))
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}
