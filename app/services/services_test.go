package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/event"
	"github.com/shashiranjanraj/meatshop/pkg/kv"
	"github.com/shashiranjanraj/meatshop/pkg/workerpool"
)

type fixture struct {
	kv       kv.Store
	bus      *event.Bus
	users    *repositories.MemoryUserRepository
	orders   *repositories.MemoryOrderRepository
	cart     *services.CartStore
	auth     *services.AuthStore
	store    *services.OrderStore
	checkout *services.Checkout
}

func newFixture(t *testing.T, opts ...services.AuthOption) *fixture {
	t.Helper()

	pool := workerpool.New(4)
	t.Cleanup(pool.Shutdown)

	demo, err := repositories.DemoUser()
	require.NoError(t, err)

	f := &fixture{
		kv:     kv.NewMemory(),
		bus:    event.NewBus(),
		users:  repositories.NewMemoryUserRepository(demo),
		orders: repositories.NewMemoryOrderRepository(repositories.DemoOrders()...),
	}
	f.cart = services.NewCartStore(f.kv)
	f.auth = services.NewAuthStore(f.users, f.kv, pool, f.bus, opts...)
	f.store = services.NewOrderStore(f.orders, pool, f.bus)
	f.checkout = services.NewCheckout(f.cart, f.store, f.auth, f.bus)
	return f
}

func (f *fixture) login(t *testing.T) services.Session {
	t.Helper()
	s, err := f.auth.Login(repositories.DemoUserEmail, repositories.DemoUserPassword).Await(ctx(t))
	require.NoError(t, err)
	return s
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

// recorder collects every value an Emitter delivers.
type recorder[T any] struct {
	mu  sync.Mutex
	got []T
}

func (r *recorder[T]) record(v T) {
	r.mu.Lock()
	r.got = append(r.got, v)
	r.mu.Unlock()
}

func (r *recorder[T]) values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.got...)
}

func line(id string, price, qty int) models.CartLine {
	return models.CartLine{ID: id, Name: id, Price: price, Quantity: qty, Weight: "1 kg"}
}
