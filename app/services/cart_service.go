package services

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/pkg/collection"
	"github.com/shashiranjanraj/meatshop/pkg/event"
	"github.com/shashiranjanraj/meatshop/pkg/kv"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/metrics"
)

// CartStore is the live shopping cart. Every mutation rewrites the whole
// collection to the KV store under kv.KeyCart and then emits a fresh
// snapshot to subscribers, both while holding the store lock, so
// subscribers see snapshots in mutation order.
//
// A failed write is logged and returned, but the in-memory change stands.
type CartStore struct {
	mu     sync.Mutex
	store  kv.Store
	items  []models.CartLine
	events *event.Emitter[[]models.CartLine]
	log    *slog.Logger
}

// NewCartStore restores the cart from store. A missing or unreadable value
// yields an empty cart.
func NewCartStore(store kv.Store) *CartStore {
	log := logger.Component("cart")

	var items []models.CartLine
	if _, err := kv.GetJSON(store, kv.KeyCart, &items); err != nil {
		log.Warn("discarding unreadable cart", "error", err)
		items = nil
	}
	items = sanitize(items)

	c := &CartStore{
		store:  store,
		items:  items,
		events: event.NewEmitter(cloneLines(items)),
		log:    log,
	}
	metrics.CartItems.Set(float64(c.itemCount()))
	return c
}

// Add inserts a copy of item, or increases the quantity of the line with
// the same id. A quantity below 1 counts as 1.
func (c *CartStore) Add(item models.CartLine) error {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(item.ID); i >= 0 {
		c.items[i].Quantity += item.Quantity
	} else {
		c.items = append(c.items, item)
	}
	return c.commit("add")
}

// Remove takes one unit off the line and drops it when it reaches zero.
// An unknown id is a no-op and emits nothing.
func (c *CartStore) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return nil
	}
	if c.items[i].Quantity > 1 {
		c.items[i].Quantity--
	} else {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	return c.commit("remove")
}

// RemoveCompletely drops the line whatever its quantity.
func (c *CartStore) RemoveCompletely(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	return c.commit("remove_completely")
}

// SetQuantity sets the absolute quantity of a line. n <= 0 removes it.
// An unknown id is a no-op and emits nothing.
func (c *CartStore) SetQuantity(id string, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return nil
	}
	if n <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	} else {
		c.items[i].Quantity = n
	}
	return c.commit("set_quantity")
}

// Clear empties the cart.
func (c *CartStore) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	return c.commit("clear")
}

// Release takes the given lines out of the cart: each matching line loses
// the released quantity and is dropped at zero. Lines and units added since
// the caller took its snapshot stay in the cart.
func (c *CartStore) Release(lines []models.CartLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range lines {
		i := c.index(l.ID)
		if i < 0 {
			continue
		}
		if c.items[i].Quantity > l.Quantity {
			c.items[i].Quantity -= l.Quantity
		} else {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}
	}
	return c.commit("release")
}

// Items returns a copy of the current lines.
func (c *CartStore) Items() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLines(c.items)
}

// Total is the subtotal: sum of price × quantity. Delivery is not included.
func (c *CartStore) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Subtotal(c.items)
}

// ItemCount is the number of units in the cart.
func (c *CartStore) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemCount()
}

// Subscribe calls fn with the current lines and then with every new
// snapshot. Snapshots are shared between subscribers; treat them as
// read-only. fn must not call back into the CartStore.
func (c *CartStore) Subscribe(fn func([]models.CartLine)) (unsubscribe func()) {
	return c.events.Subscribe(fn)
}

// ─── internals (c.mu held) ────────────────────────────────────────────────────

func (c *CartStore) index(id string) int {
	return collection.IndexOf(c.items, func(l models.CartLine) bool { return l.ID == id })
}

func (c *CartStore) itemCount() int {
	return ItemCount(c.items)
}

// commit persists and emits. The snapshot is emitted even when the write
// fails because the in-memory state has already changed.
func (c *CartStore) commit(op string) error {
	snapshot := cloneLines(c.items)

	metrics.CartMutations.WithLabelValues(op).Inc()
	metrics.CartItems.Set(float64(c.itemCount()))

	var err error
	if werr := kv.SetJSON(c.store, kv.KeyCart, snapshot); werr != nil {
		c.log.Error("persist cart", "op", op, "error", werr)
		err = fmt.Errorf("cart: %s: persist: %w", op, werr)
	}

	c.events.Emit(snapshot)
	return err
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}

// sanitize drops lines a hand-edited or older cart file could carry:
// blank ids, non-positive quantities, and duplicate ids (merged).
func sanitize(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ID == "" || l.Quantity < 1 {
			continue
		}
		if i := collection.IndexOf(out, func(o models.CartLine) bool { return o.ID == l.ID }); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}
