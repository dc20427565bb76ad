package cli

import (
	"context"
	"fmt"

	"github.com/sangkips/billdesk/internal/application/service"
	"github.com/sangkips/billdesk/internal/config"
	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/domain/ledger"
	"github.com/sangkips/billdesk/internal/domain/repository"
	"github.com/sangkips/billdesk/internal/infrastructure/database"
	infraRepo "github.com/sangkips/billdesk/internal/infrastructure/repository"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/numerator"
	"github.com/sangkips/billdesk/pkg/printer"
	"gorm.io/gorm"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *gorm.DB
	products  repository.ProductRepository
	bills     repository.BillRepository
	customers repository.CustomerRepository
	registry  *printer.Registry

	catalog  *service.CatalogService
	customer *service.CustomerService
	printers *service.PrinterService
	billing  *service.BillingService
	backup   *service.BackupService
	jobs     *service.JobTracker
}

// newApp loads configuration, opens the store and builds the services.
func newApp(envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Env != "production",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, err
	}

	registry, err := printer.ParseRegistry(cfg.Printer.Printers, cfg.Printer.Default)
	if err != nil {
		return nil, fmt.Errorf("config: PRINTERS: %w", err)
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		products:  infraRepo.NewProductRepository(db),
		bills:     infraRepo.NewBillRepository(db),
		customers: infraRepo.NewCustomerRepository(db),
		registry:  registry,
		jobs:      service.NewJobTracker(log),
	}

	header := entity.ReceiptHeader{
		StoreName: cfg.Shop.Name,
		Address:   cfg.Shop.Address,
		Phone:     cfg.Shop.Phone,
		TaxID:     cfg.Shop.GSTIN,
	}

	a.catalog = service.NewCatalogService(a.products, log)
	if err := a.catalog.Reload(context.Background()); err != nil {
		a.Close()
		return nil, err
	}
	a.customer = service.NewCustomerService(a.customers, cfg.Billing.PhoneRegion, log)
	a.printers = service.NewPrinterService(registry, header, cfg.Printer.CharWidth, cfg.Printer.Timeout, log)
	dispatcher := service.NewDispatchService(registry, service.SystemOpener, cfg.Printer.Timeout, log)

	numbers := numerator.New(numerator.Config{
		Path:     cfg.Billing.CounterFile,
		Prefix:   cfg.Billing.NumberPrefix,
		PadWidth: cfg.Billing.NumberWidth,
	})
	a.billing = service.NewBillingService(numbers, a.bills, a.catalog, a.printers, dispatcher, service.BillingOptions{
		Header: header,
		Ledger: ledger.Options{
			DefaultCustomer: cfg.Billing.DefaultCustomer,
			DefaultGST:      cfg.Billing.DefaultGST,
			HistoryLimit:    cfg.Billing.HistoryLimit,
		},
		LowStockThreshold: cfg.Billing.LowStockThreshold,
		OutputDir:         cfg.Billing.OutputDir,
	}, log)
	a.backup = service.NewBackupService(a.products, a.bills, a.customers, cfg.Billing.CounterFile, cfg.Backup.Dir, log)

	return a, nil
}

// Close stops background work and releases the store.
func (a *app) Close() {
	a.jobs.Close()
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	_ = a.log.Sync()
}
