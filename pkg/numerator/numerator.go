// Package numerator allocates bill numbers from a counter file and output
// file names from a folder of numbered documents.
//
// Every allocation is irreversible: a number handed out is never returned
// again, even if the caller discards the document it was meant for.
package numerator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Config for bill number formatting.
type Config struct {
	// Path of the counter file. It holds a single text integer.
	Path string
	// Prefix added to all numbers (e.g., "BILL")
	Prefix string
	// PadWidth is the minimum number width (default 6)
	PadWidth int
}

// DefaultConfig returns the BILL-000001 style.
func DefaultConfig(path string) Config {
	return Config{
		Path:     path,
		Prefix:   "BILL",
		PadWidth: 6,
	}
}

// Service hands out bill numbers and output file names.
type Service struct {
	cfg Config

	counterMu sync.Mutex
	fileMu    sync.Mutex
}

func New(cfg Config) *Service {
	if cfg.PadWidth <= 0 {
		cfg.PadWidth = 6
	}
	return &Service{cfg: cfg}
}

// Next increments the counter file and returns the formatted number and
// its integer value.
func (s *Service) Next() (string, int64, error) {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()

	last, err := s.read()
	if err != nil {
		return "", 0, err
	}
	next := last + 1
	if err := s.write(next); err != nil {
		return "", 0, err
	}
	return s.Format(next), next, nil
}

// Peek returns the last allocated number without allocating.
func (s *Service) Peek() (int64, error) {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()
	return s.read()
}

// Format renders num with the configured prefix and padding.
func (s *Service) Format(num int64) string {
	if s.cfg.Prefix == "" {
		return fmt.Sprintf("%0*d", s.cfg.PadWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", s.cfg.Prefix, s.cfg.PadWidth, num)
}

// ParseNumber extracts numeric part from formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	digits := formatted
	if i := strings.LastIndex(formatted, "-"); i >= 0 {
		digits = formatted[i+1:]
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// ErrCorruptCounter is returned when the counter file holds something
// other than a non-negative integer. Numbering stops rather than restart at 1.
var ErrCorruptCounter = errors.New("numerator: corrupt counter")

// read treats a missing counter as 0.
func (s *Service) read() (int64, error) {
	data, err := os.ReadFile(s.cfg.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("numerator: read counter %s: %w", s.cfg.Path, err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s holds %q", ErrCorruptCounter, s.cfg.Path, strings.TrimSpace(string(data)))
	}
	return n, nil
}

// write replaces the counter file through a rename so a crash never leaves
// a truncated counter behind.
func (s *Service) write(n int64) error {
	dir := filepath.Dir(s.cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("numerator: create counter dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".counter-*")
	if err != nil {
		return fmt.Errorf("numerator: create temp counter: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.FormatInt(n, 10)); err != nil {
		tmp.Close()
		return fmt.Errorf("numerator: write counter: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("numerator: sync counter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("numerator: close counter: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.cfg.Path); err != nil {
		return fmt.Errorf("numerator: replace counter: %w", err)
	}
	return nil
}

// NextOutputFile reserves the next "NNN.<ext>" file in folder. Existing
// files named by an integer with ext, or with one of the sibling
// extensions, are scanned, the largest plus one is used (1 when there are
// none) and the file is created empty so a concurrent caller cannot
// receive the same name.
func (s *Service) NextOutputFile(folder, ext string, siblings ...string) (string, error) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	ext = strings.TrimPrefix(ext, ".")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("numerator: create output folder: %w", err)
	}

	next, err := maxIndex(folder, append([]string{ext}, siblings...))
	if err != nil {
		return "", err
	}

	for {
		next++
		path := filepath.Join(folder, fmt.Sprintf("%03d.%s", next, ext))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("numerator: reserve %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("numerator: reserve %s: %w", path, err)
		}
		return path, nil
	}
}

func maxIndex(folder string, exts []string) (int64, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, fmt.Errorf("numerator: scan output folder: %w", err)
	}
	var highest int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range exts {
			suffix := "." + strings.TrimPrefix(ext, ".")
			if !strings.HasSuffix(e.Name(), suffix) {
				continue
			}
			n, err := strconv.ParseInt(strings.TrimSuffix(e.Name(), suffix), 10, 64)
			if err == nil && n > highest {
				highest = n
			}
		}
	}
	return highest, nil
}
