package ledger

import (
	"slices"

	"github.com/shopspring/decimal"
)

// DefaultHistoryLimit bounds the number of snapshots kept for undo.
const DefaultHistoryLimit = 200

// Snapshot is an independent copy of the undoable bill state.
type Snapshot struct {
	Seq           uint64          `json:"seq"`
	Items         []LineItem      `json:"items"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Paid          decimal.Decimal `json:"paid"`
	GSTPercent    decimal.Decimal `json:"gst_percent"`
}

func (s Snapshot) clone() Snapshot {
	s.Items = slices.Clone(s.Items)
	return s
}

// History is a bounded undo/redo stack with a cursor on the current entry.
type History struct {
	entries []Snapshot
	cursor  int
	limit   int
	seq     uint64
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, cursor: -1}
}

// Push drops everything after the cursor, appends s and evicts the oldest
// entry when the bound is exceeded.
func (h *History) Push(s Snapshot) {
	h.seq++
	s = s.clone()
	s.Seq = h.seq

	h.entries = append(h.entries[:h.cursor+1], s)
	if len(h.entries) > h.limit {
		h.entries = slices.Delete(h.entries, 0, len(h.entries)-h.limit)
	}
	h.cursor = len(h.entries) - 1
}

// ReplaceCurrent overwrites the entry under the cursor, keeping its Seq.
// Entries after the cursor are left for Redo.
func (h *History) ReplaceCurrent(s Snapshot) {
	if h.cursor < 0 {
		h.Push(s)
		return
	}
	s = s.clone()
	s.Seq = h.entries[h.cursor].Seq
	h.entries[h.cursor] = s
}

// Undo moves the cursor back. It reports false when there is nothing to undo.
func (h *History) Undo() (Snapshot, bool) {
	if h.cursor <= 0 {
		return Snapshot{}, false
	}
	h.cursor--
	return h.entries[h.cursor].clone(), true
}

// Redo moves the cursor forward. It reports false at the tail.
func (h *History) Redo() (Snapshot, bool) {
	if h.cursor >= len(h.entries)-1 {
		return Snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor].clone(), true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

func (h *History) Len() int { return len(h.entries) }

func (h *History) Cursor() int { return h.cursor }
