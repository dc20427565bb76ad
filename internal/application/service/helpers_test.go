package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/infrastructure/database"
	infraRepo "github.com/sangkips/billdesk/internal/infrastructure/repository"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/printer"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestCatalog(t *testing.T) *CatalogService {
	t.Helper()
	return NewCatalogService(infraRepo.NewProductRepository(newTestDB(t)), logger.Nop())
}

// fakePrinter fails with err, or blocks until its context ends when hang
// is set.
type fakePrinter struct {
	err   error
	hang  bool
	calls atomic.Int32
	last  atomic.Pointer[printer.Job]
}

func (p *fakePrinter) Print(ctx context.Context, job printer.Job) error {
	p.calls.Add(1)
	p.last.Store(&job)
	if p.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.err
}

func (p *fakePrinter) Kind() string      { return "network" }
func (p *fakePrinter) IsConnected() bool { return p.err == nil }

type fakeOpener struct {
	err    error
	opened []string
}

func (o *fakeOpener) Open(path string) error {
	o.opened = append(o.opened, path)
	return o.err
}

var errOffline = errors.New("printer offline")

func newRegistry(t *testing.T, printers map[string]printer.Printer, def string) *printer.Registry {
	t.Helper()
	r := printer.NewRegistry()
	for name, p := range printers {
		require.NoError(t, r.Add(name, p))
	}
	if def != "" {
		require.NoError(t, r.SetDefault(def))
	}
	return r
}

func testHeader() entity.ReceiptHeader {
	return entity.ReceiptHeader{StoreName: "Lakshmi Textiles", Address: "12 Market Road"}
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 3, 9, 17, 5, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func tempFile(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}
