package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widget() LineItem {
	return LineItem{ID: 1, Name: "Widget", UnitPrice: 9.99, ImageURL: "assets/widget.png"}
}

func gadget() LineItem {
	return LineItem{ID: 2, Name: "Gadget", UnitPrice: 24.50, ImageURL: "assets/gadget.png"}
}

// checkConsistent asserts the aggregate invariant: totals always equal the
// summation over current items.
func checkConsistent(t *testing.T, e *Engine) {
	t.Helper()
	var price float64
	var quantity int
	for _, item := range e.Items() {
		price += float64(item.Quantity) * item.UnitPrice
		quantity += item.Quantity
	}
	totals := e.Totals()
	assert.InDelta(t, price, totals.TotalPrice, 1e-9)
	assert.Equal(t, quantity, totals.TotalQuantity)
}

func TestAddItem_MergesOnExistingID(t *testing.T) {
	sut := NewEngine()
	sut.AddItem(widget())
	sut.AddItem(gadget())
	sut.AddItem(widget())

	items := sut.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 3, sut.Totals().TotalQuantity)
	assert.InDelta(t, 44.48, sut.Totals().TotalPrice, 1e-9)
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	sut := NewEngine()
	sut.AddItem(gadget())
	sut.AddItem(widget())
	sut.AddItem(gadget())

	items := sut.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, int64(1), items[1].ID)
}

func TestDecrementItem_RemovesAtZero(t *testing.T) {
	sut := NewEngine()
	sut.AddItem(widget())
	sut.DecrementItem(1)

	assert.Empty(t, sut.Items())
	assert.Equal(t, Totals{}, sut.Totals())
}

func TestDecrementItem_KeepsItemAboveZero(t *testing.T) {
	sut := NewEngine()
	sut.AddItem(widget())
	sut.AddItem(widget())
	sut.DecrementItem(1)

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	checkConsistent(t, sut)
}

func TestDecrementItem_UnknownIDIsNoOp(t *testing.T) {
	sut := NewEngine()
	sut.AddItem(widget())
	before := sut.Totals()

	sut.DecrementItem(99)

	assert.Equal(t, before, sut.Totals())
	assert.Len(t, sut.Items(), 1)
}

func TestRemoveItem_IsIdempotent(t *testing.T) {
	sut := NewEngine()
	sut.AddItem(widget())
	sut.AddItem(gadget())
	before := sut.Totals()

	sut.RemoveItem(42) // never added

	assert.Equal(t, before, sut.Totals())
	assert.Len(t, sut.Items(), 2)

	sut.RemoveItem(1)
	sut.RemoveItem(1) // second removal is a no-op

	assert.Len(t, sut.Items(), 1)
	assert.Equal(t, Totals{TotalPrice: 24.50, TotalQuantity: 1}, sut.Totals())
}

func TestAggregateConsistency_AcrossOperationSequence(t *testing.T) {
	sut := NewEngine()

	ops := []func(){
		func() { sut.AddItem(widget()) },
		func() { sut.AddItem(widget()) },
		func() { sut.AddItem(gadget()) },
		func() { sut.DecrementItem(1) },
		func() { sut.RemoveItem(2) },
		func() { sut.AddItem(gadget()) },
		func() { sut.DecrementItem(2) },
		func() { sut.DecrementItem(1) },
	}
	for _, op := range ops {
		op()
		checkConsistent(t, sut)
	}
}

func TestSubscribe_BroadcastsEveryUpdate(t *testing.T) {
	sut := NewEngine()

	var first, second []Totals
	sut.Subscribe(func(totals Totals) { first = append(first, totals) })
	sut.Subscribe(func(totals Totals) { second = append(second, totals) })

	sut.AddItem(widget())
	sut.AddItem(widget())
	sut.RemoveItem(1)

	// initial value on subscribe plus one update per mutation
	require.Len(t, first, 4)
	assert.Equal(t, Totals{}, first[0])
	assert.Equal(t, Totals{TotalPrice: 9.99, TotalQuantity: 1}, first[1])
	assert.Equal(t, Totals{TotalPrice: 19.98, TotalQuantity: 2}, first[2])
	assert.Equal(t, Totals{}, first[3])
	assert.Equal(t, first, second)
}

func TestReset_ClearsItemsAndTotals(t *testing.T) {
	sut := NewEngine()
	sut.AddItem(widget())
	sut.AddItem(gadget())

	var last Totals
	sut.Subscribe(func(totals Totals) { last = totals })

	sut.Reset()

	assert.Empty(t, sut.Items())
	assert.Equal(t, Totals{}, sut.Totals())
	assert.Equal(t, Totals{}, last)
}
