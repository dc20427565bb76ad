package ledger

import (
	"testing"

	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger() *Ledger {
	return New(Options{DefaultCustomer: "Customer", DefaultGST: decimal.NewFromInt(18)})
}

func mustAdd(t *testing.T, l *Ledger, in ItemInput) LineItem {
	t.Helper()
	item, err := l.AddItem(in)
	require.NoError(t, err)
	return item
}

func assertTotalsConsistent(t *testing.T, l *Ledger) {
	t.Helper()
	tot := l.Totals()
	sum := decimal.Zero
	for _, li := range l.Items() {
		sum = sum.Add(li.Total())
	}
	assert.True(t, tot.SubTotal.Equal(sum), "subtotal %s != sum %s", tot.SubTotal, sum)
	assert.True(t, tot.Total.Equal(tot.SubTotal.Add(tot.GSTAmount)), "total %s != %s + %s", tot.Total, tot.SubTotal, tot.GSTAmount)
	assert.True(t, tot.Due.Equal(tot.Total.Sub(tot.Paid)))
}

func TestTotalsScenario(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "Cotton shirt", Rate: "100", Quantity: "2", Discount: "0"})
	mustAdd(t, l, ItemInput{Name: "Towel", Rate: "50", Quantity: "1", Discount: "10"})

	tot := l.Totals()
	assert.Equal(t, "245.00", tot.SubTotal.StringFixed(2))
	assert.Equal(t, "44.10", tot.GSTAmount.StringFixed(2))
	assert.Equal(t, "289.10", tot.Total.StringFixed(2))
	assert.Equal(t, 2, tot.ItemCount)

	l.SetPaid(decimal.NewFromInt(300))
	assert.Equal(t, "-10.90", l.Totals().Due.StringFixed(2))
}

func TestLineTotalRounding(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want string
	}{
		{"no discount", LineItem{Rate: decimal.RequireFromString("999.50"), Quantity: 3}, "2998.50"},
		{"third off", LineItem{Rate: decimal.RequireFromString("10"), Quantity: 1, DiscountPercent: decimal.RequireFromString("33.333")}, "6.67"},
		{"full discount", LineItem{Rate: decimal.RequireFromString("10"), Quantity: 5, DiscountPercent: decimal.NewFromInt(100)}, "0.00"},
		{"zero quantity", LineItem{Rate: decimal.RequireFromString("10"), Quantity: 0}, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Total().StringFixed(2))
		})
	}
}

func TestAddItemValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    ItemInput
		field string
	}{
		{"empty name", ItemInput{Name: "  ", Rate: "10", Quantity: "1"}, "name"},
		{"bad rate", ItemInput{Name: "Saree", Rate: "ten", Quantity: "1"}, "rate"},
		{"negative mrp", ItemInput{Name: "Saree", MRP: "-1", Quantity: "1"}, "mrp"},
		{"fractional qty", ItemInput{Name: "Saree", Rate: "10", Quantity: "1.5"}, "quantity"},
		{"negative qty", ItemInput{Name: "Saree", Rate: "10", Quantity: "-2"}, "quantity"},
		{"discount over 100", ItemInput{Name: "Saree", Rate: "10", Discount: "101", Quantity: "1"}, "discount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger()
			before := l.State()

			_, err := l.AddItem(tt.in)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation))
			appErr := apperror.GetAppError(err)
			require.NotEmpty(t, appErr.Errors)
			assert.Equal(t, tt.field, appErr.Errors[0].Field)

			assert.Equal(t, before.Items, l.State().Items)
			assert.False(t, l.CanUndo())
		})
	}
}

func TestEmptyNumericFieldsAreZero(t *testing.T) {
	l := newTestLedger()
	item := mustAdd(t, l, ItemInput{Name: "Free sample"})
	assert.True(t, item.Rate.IsZero())
	assert.Equal(t, int64(0), item.Quantity)
}

func TestDeleteAndEditOutOfBounds(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "Dhoti", Rate: "250", Quantity: "1"})

	err := l.DeleteItem(3)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = l.EditItem(-1, ItemInput{Name: "x"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	assert.Equal(t, 1, l.Len())
}

func TestEditInvalidLeavesStateUnchanged(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "Dhoti", Rate: "250", Quantity: "1"})
	before := l.Items()

	_, err := l.EditItem(0, ItemInput{Name: "Dhoti", Rate: "abc", Quantity: "1"})
	require.Error(t, err)
	assert.Equal(t, before, l.Items())
}

func TestTotalsHoldAfterEveryMutation(t *testing.T) {
	l := newTestLedger()
	steps := []func(){
		func() { mustAdd(t, l, ItemInput{Name: "A", Rate: "19.99", Quantity: "3", Discount: "5"}) },
		func() { mustAdd(t, l, ItemInput{Name: "B", Rate: "0.333", Quantity: "7", Discount: "12.5"}) },
		func() { require.NoError(t, l.DuplicateItem(0)) },
		func() {
			_, err := l.EditItem(1, ItemInput{Name: "B2", Rate: "45.45", Quantity: "2", Discount: "2.25"})
			require.NoError(t, err)
		},
		func() { require.NoError(t, l.MoveItem(2, Up)) },
		func() { require.NoError(t, l.DeleteItem(0)) },
		func() { l.SetPaid(decimal.RequireFromString("12.34")) },
		func() { require.NoError(t, l.SetGSTPercent(decimal.RequireFromString("5"))) },
	}
	for _, step := range steps {
		step()
		assertTotalsConsistent(t, l)
	}
}

func TestUndoRestoresPriorState(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "Saree A", MRP: "1200", Rate: "999.50", Discount: "10", Quantity: "42"})
	l.SetCustomer("Lakshmi", "9944369227")
	l.SetPaid(decimal.NewFromInt(500))
	mustAdd(t, l, ItemInput{Name: "Blouse", Rate: "300", Quantity: "1"})
	before := l.State()

	_, err := l.EditItem(0, ItemInput{Name: "Saree B", Rate: "1", Quantity: "1"})
	require.NoError(t, err)

	require.True(t, l.Undo())
	after := l.State()
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.CustomerName, after.CustomerName)
	assert.Equal(t, before.CustomerPhone, after.CustomerPhone)
	assert.True(t, before.Paid.Equal(after.Paid))
	assertTotalsConsistent(t, l)
}

func TestUndoThenRedoIsNoop(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})
	mustAdd(t, l, ItemInput{Name: "B", Rate: "20", Quantity: "2"})
	require.NoError(t, l.MoveItem(1, Up))
	before := l.State()

	require.True(t, l.Undo())
	require.True(t, l.Redo())
	assert.Equal(t, before, l.State())
}

func TestUndoRedoBoundaries(t *testing.T) {
	l := newTestLedger()
	assert.False(t, l.Undo(), "nothing to undo on a fresh bill")
	assert.False(t, l.Redo(), "nothing to redo on a fresh bill")

	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})
	require.True(t, l.Undo())
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Undo())

	require.True(t, l.Redo())
	assert.Equal(t, 1, l.Len())
	assert.False(t, l.Redo())
}

func TestPushAfterUndoTruncatesRedo(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})
	mustAdd(t, l, ItemInput{Name: "B", Rate: "10", Quantity: "1"})
	require.True(t, l.Undo())

	mustAdd(t, l, ItemInput{Name: "C", Rate: "10", Quantity: "1"})
	assert.False(t, l.Redo())
	names := []string{}
	for _, li := range l.Items() {
		names = append(names, li.Name)
	}
	assert.Equal(t, []string{"A", "C"}, names)
}

func TestSnapshotsAreNotAliased(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})
	mustAdd(t, l, ItemInput{Name: "B", Rate: "20", Quantity: "1"})

	// An in-place swap must not leak into the snapshot taken before it.
	require.NoError(t, l.MoveItem(0, Down))
	require.True(t, l.Undo())
	items := l.Items()
	assert.Equal(t, "A", items[0].Name)
	assert.Equal(t, "B", items[1].Name)

	// Mutating a returned copy must not touch the ledger.
	items[0].Name = "changed"
	assert.Equal(t, "A", l.Items()[0].Name)
}

func TestMoveItemAtBoundaryIsNoop(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})
	mustAdd(t, l, ItemInput{Name: "B", Rate: "10", Quantity: "1"})

	require.NoError(t, l.MoveItem(0, Up))
	require.NoError(t, l.MoveItem(1, Down))
	assert.Equal(t, "A", l.Items()[0].Name)

	// Neither no-op recorded a snapshot: one undo removes B.
	require.True(t, l.Undo())
	assert.Equal(t, 1, l.Len())
}

func TestDuplicateInsertsBelow(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})
	mustAdd(t, l, ItemInput{Name: "B", Rate: "10", Quantity: "1"})
	require.NoError(t, l.DuplicateItem(0))

	var names []string
	for _, li := range l.Items() {
		names = append(names, li.Name)
	}
	assert.Equal(t, []string{"A", "A", "B"}, names)
}

func TestClearResetsCustomerAndIsUndoable(t *testing.T) {
	l := newTestLedger()
	l.SetCustomer("Ravi", "9000000000")
	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})
	l.SetPaid(decimal.NewFromInt(10))

	l.Clear()
	name, phone := l.Customer()
	assert.Equal(t, "Customer", name)
	assert.Empty(t, phone)
	assert.Equal(t, 0, l.Len())
	assert.True(t, l.Totals().Paid.IsZero())

	require.True(t, l.Undo())
	name, _ = l.Customer()
	assert.Equal(t, "Ravi", name)
	assert.Equal(t, 1, l.Len())
}

func TestRemoveBelowThreshold(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "few", Rate: "10", Quantity: "5"})
	mustAdd(t, l, ItemInput{Name: "edge", Rate: "10", Quantity: "100"})
	mustAdd(t, l, ItemInput{Name: "many", Rate: "10", Quantity: "150"})

	assert.Equal(t, 2, l.RemoveBelowThreshold(100))
	require.Equal(t, 1, l.Len())
	assert.Equal(t, "many", l.Items()[0].Name)

	assert.Equal(t, 0, l.RemoveBelowThreshold(100))
	require.True(t, l.Undo())
	assert.Equal(t, 3, l.Len())
}

func TestSetGSTPercentRejectsNegative(t *testing.T) {
	l := newTestLedger()
	err := l.SetGSTPercent(decimal.NewFromInt(-1))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Equal(t, "18", l.Totals().GSTPercent.String())
}

func TestResetStartsFreshHistory(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})
	require.NoError(t, l.SetGSTPercent(decimal.NewFromInt(5)))

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.CanUndo())
	assert.Equal(t, "18", l.Totals().GSTPercent.String())
}

func TestUndoKeepsScalarEditsMadeBeforeMutation(t *testing.T) {
	l := newTestLedger()
	l.SetCustomer("Ravi", "9000000000")
	l.SetPaid(decimal.NewFromInt(100))
	require.NoError(t, l.SetGSTPercent(decimal.NewFromInt(5)))
	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})

	require.True(t, l.Undo())
	name, phone := l.Customer()
	assert.Equal(t, "Ravi", name)
	assert.Equal(t, "9000000000", phone)
	tot := l.Totals()
	assert.Equal(t, "100", tot.Paid.String())
	assert.Equal(t, "5", tot.GSTPercent.String())
	assert.Equal(t, 0, l.Len())
}

func TestUndoRedoCarriesLatestScalarEdit(t *testing.T) {
	l := newTestLedger()
	mustAdd(t, l, ItemInput{Name: "A", Rate: "10", Quantity: "1"})
	l.SetPaid(decimal.NewFromInt(50))
	before := l.State()

	require.True(t, l.Undo())
	assert.True(t, l.Totals().Paid.IsZero())
	require.True(t, l.Redo())
	assert.Equal(t, before, l.State())
	assert.Equal(t, "50", l.Totals().Paid.String())
}
