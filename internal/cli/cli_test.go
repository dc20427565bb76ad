package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/infrastructure/document"
	"github.com/sangkips/billdesk/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testEnv writes a .env that keeps every file the app touches inside a
// temp dir and returns its path.
func testEnv(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	lines := []string{
		"LOG_LEVEL=error",
		"DB_PATH=" + filepath.Join(dir, "billdesk.db"),
		"BILLING_COUNTER_FILE=" + filepath.Join(dir, "bill_counter.txt"),
		"BILLING_OUTPUT_DIR=" + filepath.Join(dir, "bills_pdf"),
		"BACKUP_DIR=" + filepath.Join(dir, "backups"),
	}
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path, dir
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := runCLI(t, "", "hash-password", "secret")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))

	out, err = runCLI(t, "from-stdin\n", "hash-password")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))

	_, err = runCLI(t, "\n", "hash-password")
	assert.Error(t, err)
}

func TestCatalogImportExport(t *testing.T) {
	env, dir := testEnv(t)
	src := filepath.Join(dir, "master.csv")
	require.NoError(t, os.WriteFile(src, []byte("name,mrp,rate,discount,qty\nSaree A,1200,999.50,10,42\n,5,5,0,1\n"), 0o600))

	out, err := runCLI(t, "", "--env", env, "catalog", "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 of 2 rows (1 failed)")
	assert.Contains(t, out, "row 3")

	dst := filepath.Join(dir, "export.csv")
	out, err = runCLI(t, "", "--env", env, "catalog", "export", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 products")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Saree A,")
	assert.Contains(t, string(data), "999.50")
}

func TestBillsShowMissing(t *testing.T) {
	env, _ := testEnv(t)
	_, err := runCLI(t, "", "--env", env, "bills", "show", "BILL-000404")
	assert.ErrorContains(t, err, "not found")
}

func TestBackupAndPrinters(t *testing.T) {
	env, dir := testEnv(t)

	out, err := runCLI(t, "", "--env", env, "backup")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "backups"))

	entries, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, err = runCLI(t, "", "--env", env, "printers")
	require.NoError(t, err)
	assert.Contains(t, out, printer.NoPrintersFound)
}

func TestPDFMergeAndText(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for i, number := range []string{"BILL-000001", "BILL-000002"} {
		path := filepath.Join(dir, fmt.Sprintf("%03d.pdf", i+1))
		require.NoError(t, document.WritePDF(path, &entity.Receipt{
			BillNumber: number,
			Date:       time.Date(2024, 3, 9, 17, 5, 0, 0, time.UTC),
			Customer:   "Customer",
			Items:      []entity.ReceiptItem{{Name: "Pen", Quantity: 1}},
		}))
		inputs = append(inputs, path)
	}

	merged := filepath.Join(dir, "day.pdf")
	out, err := runCLI(t, "", append([]string{"pdf", "merge", "-o", merged}, inputs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Merged 2 files (2 pages)")
	assert.FileExists(t, merged)

	out, err = runCLI(t, "", "pdf", "text", inputs[1])
	require.NoError(t, err)
	assert.Contains(t, out, "BILL-000002")

	_, err = runCLI(t, "", "pdf", "text", filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}
