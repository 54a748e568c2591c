package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/meatshop/app/models"
)

// MemoryOrderRepository keeps orders in a slice in insertion order.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []models.Order
	index  map[string]int
}

func NewMemoryOrderRepository(seed ...models.Order) *MemoryOrderRepository {
	r := &MemoryOrderRepository{index: make(map[string]int)}
	for _, o := range seed {
		r.index[o.ID] = len(r.orders)
		r.orders = append(r.orders, cloneOrder(o))
	}
	return r
}

func (r *MemoryOrderRepository) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.index[order.ID]; taken {
		return fmt.Errorf("%w: order %s", ErrDuplicate, order.ID)
	}
	order.Seq = uint(len(r.orders) + 1)
	r.index[order.ID] = len(r.orders)
	r.orders = append(r.orders, cloneOrder(*order))
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return cloneOrder(r.orders[i]), nil
}

func (r *MemoryOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r *MemoryOrderRepository) ListActive(context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if !o.Status.Terminal() {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, order *models.Order, from models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[order.ID]
	if !ok {
		return ErrNotFound
	}
	if r.orders[i].Status != from {
		return fmt.Errorf("%w: order %s is no longer %s", ErrConflict, order.ID, from)
	}
	order.Seq = r.orders[i].Seq
	r.orders[i] = cloneOrder(*order)
	return nil
}

// cloneOrder copies the slice and pointer fields so callers never share
// backing storage with the repository.
func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		o.DeliveryDate = &d
	}
	return o
}
