package cart

import (
	"sync"
)

// LineItem is a single cart entry: a product plus the quantity and the
// unit price captured when it was added.
type LineItem struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl"`
}

// Totals are the two cart-wide aggregates, recomputed after every mutation.
type Totals struct {
	TotalPrice    float64 `json:"totalPrice"`
	TotalQuantity int     `json:"totalQuantity"`
}

// Observer receives the fresh totals after every recomputation.
type Observer func(Totals)

// Engine owns the line items and their derived totals. It is the single
// writer: consumers read items and totals through it and subscribe for
// aggregate updates, but never mutate state directly. One engine is
// constructed per shopping session and lives until the order completes.
type Engine struct {
	mu        sync.Mutex
	items     []*LineItem
	totals    Totals
	observers []Observer
}

func NewEngine() *Engine {
	return &Engine{}
}

// Subscribe registers an observer and immediately delivers the current
// totals, then every subsequent update.
func (e *Engine) Subscribe(fn Observer) {
	e.mu.Lock()
	e.observers = append(e.observers, fn)
	current := e.totals
	e.mu.Unlock()

	fn(current)
}

// AddItem merges into an existing line item with the same ID by
// incrementing its quantity, or appends a new line item with quantity 1.
// It never fails.
func (e *Engine) AddItem(item LineItem) {
	e.mu.Lock()
	if existing := e.find(item.ID); existing != nil {
		existing.Quantity++
	} else {
		item.Quantity = 1
		e.items = append(e.items, &item)
	}
	e.notify(e.recompute())
}

// DecrementItem lowers the quantity by one, removing the line item
// entirely when it reaches zero. Unknown IDs are a no-op.
func (e *Engine) DecrementItem(id int64) {
	e.mu.Lock()
	existing := e.find(id)
	if existing == nil {
		e.mu.Unlock()
		return
	}
	existing.Quantity--
	if existing.Quantity == 0 {
		e.remove(id)
	}
	e.notify(e.recompute())
}

// RemoveItem deletes the line item regardless of quantity. Removing an
// absent item is a no-op, totals stay untouched.
func (e *Engine) RemoveItem(id int64) {
	e.mu.Lock()
	if e.find(id) == nil {
		e.mu.Unlock()
		return
	}
	e.remove(id)
	e.notify(e.recompute())
}

// Reset clears all items and zeroes both aggregates. Called only after a
// confirmed order placement.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.items = nil
	e.notify(e.recompute())
}

// Items returns a snapshot of the line items in insertion order.
func (e *Engine) Items() []LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	items := make([]LineItem, len(e.items))
	for i, item := range e.items {
		items[i] = *item
	}
	return items
}

// Totals returns the current aggregates.
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totals
}

// find locates a line item by ID. Caller must hold the lock.
func (e *Engine) find(id int64) *LineItem {
	for _, item := range e.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// remove deletes a line item by ID preserving order. Caller must hold the lock.
func (e *Engine) remove(id int64) {
	for i, item := range e.items {
		if item.ID == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return
		}
	}
}

// recompute derives both aggregates by summation over the current items.
// Caller must hold the lock.
func (e *Engine) recompute() Totals {
	var totals Totals
	for _, item := range e.items {
		totals.TotalPrice += float64(item.Quantity) * item.UnitPrice
		totals.TotalQuantity += item.Quantity
	}
	e.totals = totals
	return totals
}

// notify releases the lock and delivers the totals to every observer.
// Observers run outside the lock so they may call back into the engine.
func (e *Engine) notify(totals Totals) {
	observers := make([]Observer, len(e.observers))
	copy(observers, e.observers)
	e.mu.Unlock()

	for _, fn := range observers {
		fn(totals)
	}
}
