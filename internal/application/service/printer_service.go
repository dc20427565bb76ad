package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/infrastructure/document"
	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/printer"
	"github.com/shopspring/decimal"
)

// PrinterService handles receipt formatting and the configured printers.
type PrinterService struct {
	registry  *printer.Registry
	header    entity.ReceiptHeader
	charWidth int
	timeout   time.Duration
	log       *logger.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(registry *printer.Registry, header entity.ReceiptHeader, charWidth int, timeout time.Duration, log *logger.Logger) *PrinterService {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &PrinterService{
		registry:  registry,
		header:    header,
		charWidth: charWidth,
		timeout:   timeout,
		log:       log.WithComponent("printer"),
	}
}

// PrinterStatus describes one configured printer.
type PrinterStatus struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Connected bool   `json:"connected"`
	Default   bool   `json:"default"`
}

// ListPrinters returns printer names, or the "no printers" sentinel.
func (s *PrinterService) ListPrinters() []string {
	return s.registry.ListPrinters()
}

// DefaultPrinter returns the default printer name or "".
func (s *PrinterService) DefaultPrinter() string {
	name, _ := s.registry.DefaultPrinter()
	return name
}

// GetStatus reports every configured printer.
func (s *PrinterService) GetStatus() []PrinterStatus {
	def := s.DefaultPrinter()
	var out []PrinterStatus
	for _, name := range s.registry.ListPrinters() {
		p, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		out = append(out, PrinterStatus{
			Name:      name,
			Type:      p.Kind(),
			Connected: p.IsConnected(),
			Default:   name == def,
		})
	}
	return out
}

// TestPrint sends a sample receipt straight to one printer, the default
// when name is empty. There is no fallback; the error says what failed.
func (s *PrinterService) TestPrint(ctx context.Context, name string) (*entity.Receipt, error) {
	if name == "" || name == printer.NoPrintersFound {
		name = s.DefaultPrinter()
	}
	if name == "" {
		return nil, apperror.NewBadRequestError("No printer selected and no default printer configured")
	}
	p, ok := s.registry.Get(name)
	if !ok {
		return nil, apperror.NewNotFoundError("Printer " + name)
	}

	receipt := s.testReceipt()

	dir, err := os.MkdirTemp("", "billdesk-test-*")
	if err != nil {
		return receipt, apperror.NewOutputError(name, err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "test.pdf")
	if err := document.WritePDF(path, receipt); err != nil {
		return receipt, apperror.NewOutputError(name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	job := printer.Job{Path: path, Raw: s.FormatReceipt(receipt), Title: "Printer test"}
	if err := p.Print(ctx, job); err != nil {
		s.log.Warnw("test print failed", "printer", name, "error", err)
		return receipt, apperror.NewOutputError(name, fmt.Errorf("test print failed: %w", err))
	}
	s.log.Infow("test page printed", "printer", name)
	return receipt, nil
}

func (s *PrinterService) testReceipt() *entity.Receipt {
	one := decimal.NewFromInt(1)
	ten := decimal.NewFromInt(10)
	header := s.header
	if header.StoreName == "" {
		header.StoreName = "PRINTER TEST"
	}
	return &entity.Receipt{
		Header:     header,
		BillNumber: "TEST",
		Date:       time.Now(),
		Customer:   "Printer test",
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", MRP: ten, Rate: ten, Quantity: 1, Total: ten},
			{Name: "Test Item 2", MRP: one, Rate: one, Quantity: 10, Total: ten},
		},
		SubTotal: decimal.NewFromInt(20),
		Total:    decimal.NewFromInt(20),
		Paid:     decimal.NewFromInt(20),
	}
}

// FormatReceipt converts a Receipt into ESC/POS bytes for thermal printers.
func (s *PrinterService) FormatReceipt(r *entity.Receipt) []byte {
	doc := printer.NewDocument(s.charWidth)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		doc.TextF("GSTIN: %s", r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('=')

	doc.KeyValue("Bill No:", r.BillNumber).
		KeyValue("Date:", r.Date.Format(document.DateLayout))
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.CustomerPhone != "" {
		doc.KeyValue("Phone:", r.CustomerPhone)
	}

	doc.Separator('-')

	// Items
	for _, item := range r.Items {
		doc.ItemLine(item.Name, item.Quantity, document.Money(item.Rate), document.Money(item.Total))
		if item.DiscountPercent.IsPositive() {
			doc.TextF("  disc %s%%  MRP %s", item.DiscountPercent.String(), document.Money(item.MRP))
		}
	}

	doc.Separator('-')

	// Totals
	doc.KeyValue("SubTotal:", document.Money(r.SubTotal))
	doc.KeyValue(fmt.Sprintf("GST (%s%%):", r.GSTPercent.String()), document.Money(r.GST))
	doc.SetBold(true).
		KeyValue("TOTAL:", document.Money(r.Total)).
		SetBold(false)
	doc.KeyValue("Paid:", document.Money(r.Paid))
	doc.KeyValue("Due:", document.Money(r.Due))

	doc.Separator('=')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		FeedLines(1).
		Text("Thank you for your business!").
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
