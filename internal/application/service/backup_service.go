package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sangkips/billdesk/internal/domain/repository"
	"github.com/sangkips/billdesk/internal/infrastructure/backup"
	"github.com/sangkips/billdesk/internal/infrastructure/sheet"
	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/sangkips/billdesk/pkg/logger"
)

// BackupResult describes a written backup archive.
type BackupResult struct {
	Path      string `json:"path"`
	Products  int    `json:"products"`
	Bills     int    `json:"bills"`
	Customers int    `json:"customers"`
	Size      int64  `json:"size"`
}

// BackupService snapshots the catalog, bill archive, customers and bill
// counter into one compressed archive.
type BackupService struct {
	products    repository.ProductRepository
	bills       repository.BillRepository
	customers   repository.CustomerRepository
	counterFile string
	dir         string
	now         func() time.Time
	log         *logger.Logger
}

// NewBackupService creates a new backup service writing into dir.
func NewBackupService(
	products repository.ProductRepository,
	bills repository.BillRepository,
	customers repository.CustomerRepository,
	counterFile, dir string,
	log *logger.Logger,
) *BackupService {
	return &BackupService{
		products:    products,
		bills:       bills,
		customers:   customers,
		counterFile: counterFile,
		dir:         dir,
		now:         time.Now,
		log:         log.WithComponent("backup"),
	}
}

// Create writes backup-<timestamp>.tar.zst into the backup directory.
func (s *BackupService) Create(ctx context.Context) (*BackupResult, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, apperror.NewPersistenceError("load products", err)
	}
	bills, err := s.bills.FindAllWithItems(ctx)
	if err != nil {
		return nil, apperror.NewPersistenceError("load bills", err)
	}
	customers, err := s.customers.FindAll(ctx)
	if err != nil {
		return nil, apperror.NewPersistenceError("load customers", err)
	}

	var catalog bytes.Buffer
	if err := sheet.WriteCSV(&catalog, products); err != nil {
		return nil, apperror.NewPersistenceError("encode catalog", err)
	}
	billsJSON, err := json.MarshalIndent(bills, "", "  ")
	if err != nil {
		return nil, apperror.NewPersistenceError("encode bills", err)
	}
	customersJSON, err := json.MarshalIndent(customers, "", "  ")
	if err != nil {
		return nil, apperror.NewPersistenceError("encode customers", err)
	}
	counter, err := os.ReadFile(s.counterFile)
	if errors.Is(err, fs.ErrNotExist) {
		counter = []byte("0")
	} else if err != nil {
		return nil, apperror.NewPersistenceError("read bill counter", err)
	}

	entries := []backup.Entry{
		{Name: "catalog.csv", Data: catalog.Bytes()},
		{Name: "bills.json", Data: billsJSON},
		{Name: "customers.json", Data: customersJSON},
		{Name: "bill_counter.txt", Data: counter},
	}

	now := s.now()
	f, path, err := s.reserve(now)
	if err != nil {
		return nil, apperror.NewPersistenceError("create backup file", err)
	}
	err = backup.Write(f, entries, now)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, apperror.NewPersistenceError("write backup", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, apperror.NewPersistenceError("stat backup", err)
	}
	result := &BackupResult{
		Path:      path,
		Products:  len(products),
		Bills:     len(bills),
		Customers: len(customers),
		Size:      info.Size(),
	}
	s.log.Infow("backup written", "path", path, "bytes", result.Size)
	return result, nil
}

// reserve creates a new archive file, adding a suffix when a backup was
// already taken in the same second.
func (s *BackupService) reserve(now time.Time) (*os.File, string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, "", err
	}
	base := "backup-" + now.Format("20060102-150405")
	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s-%d", base, i)
		}
		path := filepath.Join(s.dir, name+backup.Extension)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return f, path, nil
	}
}
