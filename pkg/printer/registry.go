package printer

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// NoPrintersFound is the single entry listed when nothing is configured.
// Selecting it means "no printer".
const NoPrintersFound = "<No printers found>"

// Registry holds the configured printers by name.
type Registry struct {
	mu          sync.RWMutex
	printers    map[string]Printer
	defaultName string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{printers: make(map[string]Printer)}
}

// ParseRegistry builds a registry from a PRINTERS value of the form
// "name=type:target,name=type:target". defaultName may be empty.
func ParseRegistry(spec, defaultName string) (*Registry, error) {
	r := NewRegistry()
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rest, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("printer: invalid entry %q (want name=type:target)", entry)
		}
		kind, target, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("printer: invalid entry %q (want name=type:target)", entry)
		}
		p, err := NewPrinterFromConfig(strings.TrimSpace(kind), strings.TrimSpace(target))
		if err != nil {
			return nil, err
		}
		if err := r.Add(strings.TrimSpace(name), p); err != nil {
			return nil, err
		}
	}
	if defaultName != "" {
		if err := r.SetDefault(defaultName); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers p under name.
func (r *Registry) Add(name string, p Printer) error {
	if name == "" || name == NoPrintersFound {
		return fmt.Errorf("printer: invalid printer name %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.printers[name]; exists {
		return fmt.Errorf("printer: duplicate printer name %q", name)
	}
	r.printers[name] = p
	return nil
}

// SetDefault marks a registered printer as the default.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.printers[name]; !ok {
		return fmt.Errorf("printer: default printer %q is not configured", name)
	}
	r.defaultName = name
	return nil
}

// ListPrinters returns the printer names sorted, or the NoPrintersFound
// sentinel when none are configured.
func (r *Registry) ListPrinters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.printers) == 0 {
		return []string{NoPrintersFound}
	}
	names := make([]string, 0, len(r.printers))
	for name := range r.printers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPrinter returns the default printer name, if one is set.
func (r *Registry) DefaultPrinter() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName, r.defaultName != ""
}

// Get looks up a printer by name.
func (r *Registry) Get(name string) (Printer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.printers[name]
	return p, ok
}
