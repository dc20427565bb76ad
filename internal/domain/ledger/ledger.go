// Package ledger holds the bill being composed at the counter: its line
// items, customer, payment state and the undo history over them.
package ledger

import (
	"slices"

	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Direction of a MoveItem.
type Direction int

const (
	Up Direction = iota
	Down
)

// Options configures a new Ledger.
type Options struct {
	DefaultCustomer string
	DefaultGST      decimal.Decimal
	HistoryLimit    int
}

// Totals are derived from the items every time they are read.
type Totals struct {
	SubTotal   decimal.Decimal `json:"sub_total"`
	GSTPercent decimal.Decimal `json:"gst_percent"`
	GSTAmount  decimal.Decimal `json:"gst_amount"`
	Total      decimal.Decimal `json:"total"`
	Paid       decimal.Decimal `json:"paid"`
	Due        decimal.Decimal `json:"due"`
	ItemCount  int             `json:"item_count"`
}

// Ledger is not safe for concurrent use; the owner serializes access.
type Ledger struct {
	opts          Options
	items         []LineItem
	customerName  string
	customerPhone string
	gstPercent    decimal.Decimal
	paid          decimal.Decimal
	history       *History
}

func New(opts Options) *Ledger {
	if opts.DefaultCustomer == "" {
		opts.DefaultCustomer = "Customer"
	}
	l := &Ledger{
		opts:         opts,
		customerName: opts.DefaultCustomer,
		gstPercent:   opts.DefaultGST,
		history:      NewHistory(opts.HistoryLimit),
	}
	l.history.Push(l.State())
	return l
}

// State returns a copy of the undoable state.
func (l *Ledger) State() Snapshot {
	return Snapshot{
		Items:         slices.Clone(l.items),
		CustomerName:  l.customerName,
		CustomerPhone: l.customerPhone,
		Paid:          l.paid,
		GSTPercent:    l.gstPercent,
	}
}

func (l *Ledger) restore(s Snapshot) {
	l.items = slices.Clone(s.Items)
	l.customerName = s.CustomerName
	l.customerPhone = s.CustomerPhone
	l.paid = s.Paid
	l.gstPercent = s.GSTPercent
}

func (l *Ledger) commit() {
	l.history.Push(l.State())
}

// coalesce folds a scalar edit into the current history entry, so undo
// and redo carry it along with the surrounding item changes.
func (l *Ledger) coalesce() {
	l.history.ReplaceCurrent(l.State())
}

func (l *Ledger) checkIndex(index int) error {
	if index < 0 || index >= len(l.items) {
		return apperror.NewIndexError(index, len(l.items))
	}
	return nil
}

func (l *Ledger) AddItem(in ItemInput) (LineItem, error) {
	item, err := ParseItem(in)
	if err != nil {
		return LineItem{}, err
	}
	l.items = append(l.items, item)
	l.commit()
	return item, nil
}

func (l *Ledger) DeleteItem(index int) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.items = slices.Delete(l.items, index, index+1)
	l.commit()
	return nil
}

func (l *Ledger) EditItem(index int, in ItemInput) (LineItem, error) {
	if err := l.checkIndex(index); err != nil {
		return LineItem{}, err
	}
	item, err := ParseItem(in)
	if err != nil {
		return LineItem{}, err
	}
	l.items[index] = item
	l.commit()
	return item, nil
}

// DuplicateItem inserts a copy of the line directly below it.
func (l *Ledger) DuplicateItem(index int) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.items = slices.Insert(l.items, index+1, l.items[index])
	l.commit()
	return nil
}

// MoveItem swaps the line with its neighbour. Moving past either end is a
// no-op and records nothing.
func (l *Ledger) MoveItem(index int, dir Direction) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	target := index - 1
	if dir == Down {
		target = index + 1
	}
	if target < 0 || target >= len(l.items) {
		return nil
	}
	l.items[index], l.items[target] = l.items[target], l.items[index]
	l.commit()
	return nil
}

// RemoveBelowThreshold drops lines whose quantity is at or below threshold
// and returns how many were removed.
func (l *Ledger) RemoveBelowThreshold(threshold int64) int {
	before := len(l.items)
	l.items = slices.DeleteFunc(l.items, func(li LineItem) bool {
		return IsLowStock(li, threshold)
	})
	removed := before - len(l.items)
	if removed > 0 {
		l.commit()
	}
	return removed
}

// IsLowStock flags lines whose quantity is at or below threshold.
func IsLowStock(li LineItem, threshold int64) bool {
	return li.Quantity <= threshold
}

func (l *Ledger) SetPaid(amount decimal.Decimal) {
	l.paid = amount
	l.coalesce()
}

func (l *Ledger) SetGSTPercent(percent decimal.Decimal) error {
	if percent.IsNegative() {
		return apperror.NewFieldError("gst_percent", "must not be negative")
	}
	l.gstPercent = percent
	l.coalesce()
	return nil
}

func (l *Ledger) SetCustomer(name, phone string) {
	l.customerName = name
	l.customerPhone = phone
	l.coalesce()
}

// Clear empties the bill and resets the customer and payment.
func (l *Ledger) Clear() {
	l.items = nil
	l.customerName = l.opts.DefaultCustomer
	l.customerPhone = ""
	l.paid = decimal.Zero
	l.commit()
}

// Reset starts a fresh bill with a fresh history, as after a finalized sale.
func (l *Ledger) Reset() {
	l.items = nil
	l.customerName = l.opts.DefaultCustomer
	l.customerPhone = ""
	l.paid = decimal.Zero
	l.gstPercent = l.opts.DefaultGST
	l.history = NewHistory(l.opts.HistoryLimit)
	l.history.Push(l.State())
}

func (l *Ledger) Undo() bool {
	s, ok := l.history.Undo()
	if ok {
		l.restore(s)
	}
	return ok
}

func (l *Ledger) Redo() bool {
	s, ok := l.history.Redo()
	if ok {
		l.restore(s)
	}
	return ok
}

func (l *Ledger) CanUndo() bool { return l.history.CanUndo() }

func (l *Ledger) CanRedo() bool { return l.history.CanRedo() }

// Items returns a copy of the lines in bill order.
func (l *Ledger) Items() []LineItem {
	return slices.Clone(l.items)
}

func (l *Ledger) Len() int { return len(l.items) }

func (l *Ledger) Customer() (name, phone string) {
	return l.customerName, l.customerPhone
}

func (l *Ledger) Totals() Totals {
	sub := decimal.Zero
	for _, li := range l.items {
		sub = sub.Add(li.Total())
	}
	gst := sub.Mul(l.gstPercent).Div(hundred).Round(2)
	total := sub.Add(gst)
	return Totals{
		SubTotal:   sub,
		GSTPercent: l.gstPercent,
		GSTAmount:  gst,
		Total:      total,
		Paid:       l.paid,
		Due:        total.Sub(l.paid),
		ItemCount:  len(l.items),
	}
}
