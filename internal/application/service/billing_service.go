package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/domain/ledger"
	"github.com/sangkips/billdesk/internal/domain/repository"
	"github.com/sangkips/billdesk/internal/infrastructure/document"
	"github.com/sangkips/billdesk/internal/infrastructure/sheet"
	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/numerator"
	"github.com/sangkips/billdesk/pkg/pagination"
	"github.com/sangkips/billdesk/pkg/printer"
	"github.com/shopspring/decimal"
)

// DraftNumber stands in for the bill number on previews.
const DraftNumber = "DRAFT"

// BillingOptions configures a BillingService.
type BillingOptions struct {
	Header            entity.ReceiptHeader
	Ledger            ledger.Options
	LowStockThreshold int64
	OutputDir         string
	// Now is the clock used for bill dates; time.Now when nil.
	Now func() time.Time
	// RenderPDF writes the PDF for a receipt; document.WritePDF when nil.
	RenderPDF func(path string, r *entity.Receipt) error
}

// BillingService owns the bill being composed at the counter and turns it
// into a numbered, archived and dispatched document.
type BillingService struct {
	mu         sync.Mutex
	ledger     *ledger.Ledger
	numbers    *numerator.Service
	bills      repository.BillRepository
	catalog    *CatalogService
	printers   *PrinterService
	dispatcher *DispatchService
	opts       BillingOptions
	log        *logger.Logger
}

// NewBillingService creates a new billing service with an empty bill.
func NewBillingService(
	numbers *numerator.Service,
	bills repository.BillRepository,
	catalog *CatalogService,
	printers *PrinterService,
	dispatcher *DispatchService,
	opts BillingOptions,
	log *logger.Logger,
) *BillingService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RenderPDF == nil {
		opts.RenderPDF = document.WritePDF
	}
	return &BillingService{
		ledger:     ledger.New(opts.Ledger),
		numbers:    numbers,
		bills:      bills,
		catalog:    catalog,
		printers:   printers,
		dispatcher: dispatcher,
		opts:       opts,
		log:        log.WithComponent("billing"),
	}
}

// LineView is one bill line as shown at the counter.
type LineView struct {
	Index int `json:"index"`
	ledger.LineItem
	Total    decimal.Decimal `json:"total"`
	LowStock bool            `json:"low_stock"`
}

// BillView is the complete state of the current bill.
type BillView struct {
	Items         []LineView    `json:"items"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	Totals        ledger.Totals `json:"totals"`
	CanUndo       bool          `json:"can_undo"`
	CanRedo       bool          `json:"can_redo"`
}

func (s *BillingService) view() *BillView {
	items := s.ledger.Items()
	name, phone := s.ledger.Customer()
	v := &BillView{
		Items:         make([]LineView, len(items)),
		CustomerName:  name,
		CustomerPhone: phone,
		Totals:        s.ledger.Totals(),
		CanUndo:       s.ledger.CanUndo(),
		CanRedo:       s.ledger.CanRedo(),
	}
	for i, it := range items {
		v.Items[i] = LineView{
			Index:    i,
			LineItem: it,
			Total:    it.Total(),
			LowStock: ledger.IsLowStock(it, s.opts.LowStockThreshold),
		}
	}
	return v
}

// locked runs fn with the ledger held and returns the resulting view.
func (s *BillingService) locked(fn func() error) (*BillView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return nil, err
	}
	return s.view(), nil
}

// View returns the current bill.
func (s *BillingService) View() *BillView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *BillingService) AddItem(in ledger.ItemInput) (*BillView, error) {
	return s.locked(func() error {
		_, err := s.ledger.AddItem(in)
		return err
	})
}

// AddFromCatalog adds a line filled from the product master. quantity is
// raw text like any other input; empty means 1.
func (s *BillingService) AddFromCatalog(name, quantity string) (*BillView, error) {
	p, ok := s.catalog.Lookup(name)
	if !ok {
		return nil, apperror.NewNotFoundError("Product " + name)
	}
	if quantity == "" {
		quantity = "1"
	}
	return s.AddItem(ledger.ItemInput{
		Name:     p.Name,
		MRP:      p.MRP.String(),
		Rate:     p.Rate.String(),
		Discount: p.DiscountPercent.String(),
		Quantity: quantity,
	})
}

func (s *BillingService) EditItem(index int, in ledger.ItemInput) (*BillView, error) {
	return s.locked(func() error {
		_, err := s.ledger.EditItem(index, in)
		return err
	})
}

func (s *BillingService) DeleteItem(index int) (*BillView, error) {
	return s.locked(func() error { return s.ledger.DeleteItem(index) })
}

func (s *BillingService) DuplicateItem(index int) (*BillView, error) {
	return s.locked(func() error { return s.ledger.DuplicateItem(index) })
}

func (s *BillingService) MoveItem(index int, dir ledger.Direction) (*BillView, error) {
	return s.locked(func() error { return s.ledger.MoveItem(index, dir) })
}

func (s *BillingService) SetCustomer(name, phone string) *BillView {
	v, _ := s.locked(func() error {
		s.ledger.SetCustomer(name, phone)
		return nil
	})
	return v
}

func (s *BillingService) SetPaid(amount decimal.Decimal) (*BillView, error) {
	if amount.IsNegative() {
		return nil, apperror.NewFieldError("paid", "must not be negative")
	}
	return s.locked(func() error {
		s.ledger.SetPaid(amount)
		return nil
	})
}

func (s *BillingService) SetGSTPercent(percent decimal.Decimal) (*BillView, error) {
	return s.locked(func() error { return s.ledger.SetGSTPercent(percent) })
}

func (s *BillingService) Clear() *BillView {
	v, _ := s.locked(func() error {
		s.ledger.Clear()
		return nil
	})
	return v
}

// Undo reports false when there was nothing to undo.
func (s *BillingService) Undo() (*BillView, bool) {
	var ok bool
	v, _ := s.locked(func() error {
		ok = s.ledger.Undo()
		return nil
	})
	return v, ok
}

// Redo reports false when there was nothing to redo.
func (s *BillingService) Redo() (*BillView, bool) {
	var ok bool
	v, _ := s.locked(func() error {
		ok = s.ledger.Redo()
		return nil
	})
	return v, ok
}

// RemoveLowStock drops lines at or below threshold, or the configured
// threshold when nil, and returns how many were removed.
func (s *BillingService) RemoveLowStock(threshold *int64) (*BillView, int) {
	t := s.opts.LowStockThreshold
	if threshold != nil {
		t = *threshold
	}
	var removed int
	v, _ := s.locked(func() error {
		removed = s.ledger.RemoveBelowThreshold(t)
		return nil
	})
	return v, removed
}

// receipt builds a receipt from the current ledger. Caller holds mu.
func (s *BillingService) receipt(number string, at time.Time) *entity.Receipt {
	totals := s.ledger.Totals()
	name, phone := s.ledger.Customer()
	r := &entity.Receipt{
		Header:        s.opts.Header,
		BillNumber:    number,
		Date:          at,
		Customer:      name,
		CustomerPhone: phone,
		SubTotal:      totals.SubTotal,
		GSTPercent:    totals.GSTPercent,
		GST:           totals.GSTAmount,
		Total:         totals.Total,
		Paid:          totals.Paid,
		Due:           totals.Due,
	}
	for _, it := range s.ledger.Items() {
		r.Items = append(r.Items, entity.ReceiptItem{
			Name:            it.Name,
			MRP:             it.MRP,
			Rate:            it.Rate,
			DiscountPercent: it.DiscountPercent,
			Quantity:        it.Quantity,
			Total:           it.Total(),
		})
	}
	return r
}

// Preview is a draft rendering of the current bill.
type Preview struct {
	Text    string          `json:"text"`
	Receipt *entity.Receipt `json:"receipt"`
}

// Preview renders the current bill without allocating a bill number.
func (s *BillingService) Preview() *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.receipt(DraftNumber, s.opts.Now())
	return &Preview{Text: document.RenderText(r), Receipt: r}
}

// FinalizeResult describes a finalized (or reprinted) bill.
type FinalizeResult struct {
	BillNumber string             `json:"bill_number"`
	Bill       *entity.BillRecord `json:"bill"`
	Path       string             `json:"path"`
	Text       string             `json:"text"`
	Outcome    *Outcome           `json:"outcome,omitempty"`
}

// Finalize numbers the current bill, renders its document, archives it,
// starts a new bill and then dispatches the document.
//
// Once the bill is archived the result is always returned. A rendering
// failure or an undelivered document comes back as an output error
// alongside the result; the bill can be reprinted from the archive.
func (s *BillingService) Finalize(ctx context.Context, printerName string) (*FinalizeResult, error) {
	s.mu.Lock()
	if s.ledger.Len() == 0 {
		s.mu.Unlock()
		return nil, apperror.ErrEmptyBill
	}

	number, seq, err := s.numbers.Next()
	if err != nil {
		s.mu.Unlock()
		return nil, apperror.NewPersistenceError("allocate bill number", err)
	}
	receipt := s.receipt(number, s.opts.Now())

	path, err := s.numbers.NextOutputFile(s.opts.OutputDir, "pdf", "txt")
	if err != nil {
		s.mu.Unlock()
		return nil, apperror.NewPersistenceError("reserve output file", err)
	}
	path, renderErr := s.render(path, receipt)

	bill := billRecord(receipt, seq, path)
	if err := s.bills.Create(ctx, bill); err != nil {
		s.mu.Unlock()
		s.log.Errorw("bill not archived", "bill_number", number, "error", err)
		if path != "" {
			_ = os.Remove(path)
		}
		return nil, apperror.NewPersistenceError("save bill", err)
	}
	s.ledger.Reset()
	s.mu.Unlock()

	BillsFinalized.Inc()
	BillAmount.Observe(receipt.Total.InexactFloat64())
	s.log.WithContext(ctx).Infow("bill finalized", "bill_number", number, "total", receipt.Total.StringFixed(2), "path", path)

	return s.dispatch(ctx, bill, receipt, printerName, renderErr)
}

// Reprint renders an archived bill into a new output file and dispatches it.
func (s *BillingService) Reprint(ctx context.Context, number, printerName string) (*FinalizeResult, error) {
	bill, err := s.GetBill(ctx, number)
	if err != nil {
		return nil, err
	}
	path, err := s.numbers.NextOutputFile(s.opts.OutputDir, "pdf", "txt")
	if err != nil {
		return nil, apperror.NewPersistenceError("reserve output file", err)
	}
	receipt := entity.ReceiptFromBill(s.opts.Header, bill)
	path, renderErr := s.render(path, receipt)
	bill.OutputPath = path
	s.log.WithContext(ctx).Infow("reprinting bill", "bill_number", number, "path", path)
	return s.dispatch(ctx, bill, receipt, printerName, renderErr)
}

// render writes the PDF to the reserved path. When that fails the empty
// reservation is removed and the text receipt is saved next to it as
// NNN.txt instead. The returned path is the file that exists on disk, or
// empty when neither could be written.
func (s *BillingService) render(path string, receipt *entity.Receipt) (string, error) {
	pdfErr := s.opts.RenderPDF(path, receipt)
	if pdfErr == nil {
		return path, nil
	}
	s.log.Errorw("pdf not written, saving text receipt", "bill_number", receipt.BillNumber, "error", pdfErr)
	_ = os.Remove(path)

	txt := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
	err := writeFile(txt, func(w io.Writer) error {
		_, err := io.WriteString(w, document.RenderText(receipt))
		return err
	})
	if err != nil {
		s.log.Errorw("text receipt not written", "bill_number", receipt.BillNumber, "error", err)
		return "", apperror.NewOutputError("pdf", errors.Join(pdfErr, err))
	}
	return txt, apperror.NewOutputError("pdf", pdfErr)
}

// dispatch sends the bill through the output tiers. Raw printers get the
// ESC/POS receipt whatever happened to the document; a render error takes
// precedence over the dispatch error in the result.
func (s *BillingService) dispatch(ctx context.Context, bill *entity.BillRecord, receipt *entity.Receipt, printerName string, renderErr error) (*FinalizeResult, error) {
	result := &FinalizeResult{
		BillNumber: bill.BillNumber,
		Bill:       bill,
		Path:       bill.OutputPath,
		Text:       document.RenderText(receipt),
	}
	job := printer.Job{
		Path:  bill.OutputPath,
		Raw:   s.printers.FormatReceipt(receipt),
		Title: bill.BillNumber,
	}
	outcome, err := s.dispatcher.Dispatch(ctx, job, printerName)
	result.Outcome = outcome
	if renderErr != nil {
		return result, renderErr
	}
	return result, err
}

func billRecord(r *entity.Receipt, seq int64, path string) *entity.BillRecord {
	b := &entity.BillRecord{
		BillNumber:    r.BillNumber,
		Sequence:      seq,
		IssuedAt:      r.Date.UTC(),
		CustomerName:  r.Customer,
		CustomerPhone: r.CustomerPhone,
		GSTPercent:    r.GSTPercent,
		SubTotal:      r.SubTotal,
		GSTAmount:     r.GST,
		Total:         r.Total,
		Paid:          r.Paid,
		Due:           r.Due,
		OutputPath:    path,
	}
	for i, it := range r.Items {
		b.Items = append(b.Items, entity.BillItem{
			Position:        i + 1,
			Name:            it.Name,
			MRP:             it.MRP,
			Rate:            it.Rate,
			DiscountPercent: it.DiscountPercent,
			Quantity:        it.Quantity,
			LineTotal:       it.Total,
		})
	}
	return b
}

// GetBill returns an archived bill with its items. A bare sequence such
// as "7" is accepted for the formatted number.
func (s *BillingService) GetBill(ctx context.Context, number string) (*entity.BillRecord, error) {
	number = strings.TrimSpace(number)
	if isDigits(number) {
		number = s.numbers.Format(numerator.ParseNumber(number))
	}
	bill, err := s.bills.GetByNumber(ctx, number)
	if err != nil {
		return nil, apperror.NewPersistenceError("load bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill " + number)
	}
	return bill, nil
}

// MergeBills combines the PDFs of the given archived bills, in order, into
// out. Bills saved only as a text receipt cannot be merged.
func (s *BillingService) MergeBills(ctx context.Context, numbers []string, out string) (int, error) {
	if len(numbers) == 0 {
		return 0, apperror.NewFieldError("bills", "at least one bill number is required")
	}
	if !strings.EqualFold(filepath.Ext(out), ".pdf") {
		return 0, apperror.NewBadRequestError("Merged output must be a .pdf file")
	}
	inputs := make([]string, 0, len(numbers))
	for _, number := range numbers {
		path, err := s.billFile(ctx, number)
		if err != nil {
			return 0, err
		}
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return 0, apperror.NewBadRequestError("Bill " + number + " has no PDF, reprint it first")
		}
		inputs = append(inputs, path)
	}
	if err := document.MergePDFs(inputs, out); err != nil {
		return 0, apperror.NewOutputError("merge", err)
	}
	pages, err := document.PageCount(out)
	if err != nil {
		return 0, apperror.NewOutputError("merge", err)
	}
	s.log.Infow("bills merged", "bills", len(inputs), "pages", pages, "path", out)
	return pages, nil
}

// BillText reads back the text of an archived bill's document.
func (s *BillingService) BillText(ctx context.Context, number string) (string, error) {
	path, err := s.billFile(ctx, number)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", apperror.NewPersistenceError("read bill document", err)
		}
		return string(data), nil
	}
	text, err := document.ExtractText(path)
	if err != nil {
		return "", apperror.NewOutputError("pdf", err)
	}
	return text, nil
}

// billFile returns the archived document of a bill, which must still be on
// disk.
func (s *BillingService) billFile(ctx context.Context, number string) (string, error) {
	bill, err := s.GetBill(ctx, number)
	if err != nil {
		return "", err
	}
	if bill.OutputPath == "" {
		return "", apperror.NewNotFoundError("Document for bill " + bill.BillNumber)
	}
	if _, err := os.Stat(bill.OutputPath); err != nil {
		return "", apperror.NewNotFoundError("Document for bill " + bill.BillNumber)
	}
	return bill.OutputPath, nil
}

// ListBills lists archived bills, newest first.
func (s *BillingService) ListBills(ctx context.Context, params *repository.BillFilterParams) (*pagination.PaginatedResult[entity.BillRecord], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	bills, total, err := s.bills.List(ctx, params)
	if err != nil {
		return nil, apperror.NewPersistenceError("list bills", err)
	}
	return pagination.NewPaginatedResult(bills, params.Pagination, total), nil
}

// ExportBills writes every archived bill to an xlsx workbook.
func (s *BillingService) ExportBills(ctx context.Context, path string) (int, error) {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return 0, apperror.NewBadRequestError("Bills export must be an .xlsx file")
	}
	bills, err := s.bills.FindAllWithItems(ctx)
	if err != nil {
		return 0, apperror.NewPersistenceError("load bills", err)
	}
	if err := writeFile(path, func(w io.Writer) error { return sheet.WriteBillsXLSX(w, bills) }); err != nil {
		return 0, apperror.NewPersistenceError("export bills", err)
	}
	s.log.Infow("bills exported", "path", path, "bills", len(bills))
	return len(bills), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// writeFile creates path (and its directory) and fills it with write.
func writeFile(path string, write func(w io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
