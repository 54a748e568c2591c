package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/meatshop/app/events"
	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/event"
	"github.com/shashiranjanraj/meatshop/pkg/workerpool"
)

var testAddress = models.DeliveryAddress{
	FullName:     "Test User",
	PhoneNumber:  "1234567890",
	AddressLine1: "123 Test Street",
	City:         "Test City",
	State:        "Test State",
	Pincode:      "123456",
}

func placeOne(t *testing.T, f *fixture, userID string) models.Order {
	t.Helper()
	items := []models.OrderItem{{ProductID: "CC001-1 kg", Name: "Chicken Curry Cut with Skin", Quantity: 1, Price: 170}}
	o, err := f.store.Place(userID, items, 210, testAddress, "Cash on Delivery").Await(ctx(t))
	require.NoError(t, err)
	return o
}

func TestOrders_PlaceAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)

	first := placeOne(t, f, "1")
	second := placeOne(t, f, "1")

	assert.Equal(t, "ORD002", first.ID)
	assert.Equal(t, "ORD003", second.ID)
	assert.Equal(t, models.StatusPending, first.Status)
	assert.Equal(t, 210, first.Total)
	assert.WithinDuration(t, time.Now(), first.OrderDate, 5*time.Second)
}

func TestOrders_ConcurrentPlaceNeverReusesAnID(t *testing.T) {
	f := newFixture(t)

	const n = 20
	c := ctx(t)
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := f.store.Place("1", nil, 40, testAddress, "Cash on Delivery").Await(c)
			if assert.NoError(t, err) {
				ids <- o.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	for i := 2; i <= n+1; i++ {
		assert.True(t, seen[fmt.Sprintf("ORD%03d", i)])
	}
}

func TestOrders_ListForUserKeepsInsertionOrder(t *testing.T) {
	f := newFixture(t)
	placeOne(t, f, "1")
	placeOne(t, f, "someone-else")

	orders, err := f.store.ListForUser("1").Await(ctx(t))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD001", orders[0].ID)
	assert.Equal(t, "ORD002", orders[1].ID)
}

func TestOrders_CancelOnlyFromPending(t *testing.T) {
	f := newFixture(t)
	var fired []models.Order
	f.bus.Listen(events.OrderCancelled, func(p any) { fired = append(fired, p.(models.Order)) })

	o := placeOne(t, f, "1")

	cancelled, err := f.store.Cancel(o.ID).Await(ctx(t))
	require.NoError(t, err)
	require.NotNil(t, cancelled)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.Len(t, fired, 1)

	again, err := f.store.Cancel(o.ID).Await(ctx(t))
	require.NoError(t, err)
	assert.Nil(t, again)

	delivered, err := f.store.Cancel("ORD001").Await(ctx(t))
	require.NoError(t, err)
	assert.Nil(t, delivered)

	unknown, err := f.store.Cancel("ORD999").Await(ctx(t))
	require.NoError(t, err)
	assert.Nil(t, unknown)

	stored, err := f.store.Get("ORD001").Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)
}

func TestOrders_TrackDeliveredSeedOrder(t *testing.T) {
	f := newFixture(t)

	res, err := f.store.Track("ORD001").Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, "delivered", res.Status)

	var statuses []string
	for _, u := range res.Updates {
		statuses = append(statuses, u.Status)
	}
	assert.Equal(t, []string{"ordered", "processing", "shipped", "delivered"}, statuses)

	ordered := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, res.Updates[1].Date.Equal(ordered.Add(30*time.Minute)))
	assert.True(t, res.Updates[2].Date.Equal(ordered.Add(60*time.Minute)))
	assert.True(t, res.Updates[3].Date.Equal(time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Order has been delivered", res.Updates[3].Description)
}

func TestOrders_TrackCancelledAndUnknown(t *testing.T) {
	f := newFixture(t)
	o := placeOne(t, f, "1")
	_, err := f.store.Cancel(o.ID).Await(ctx(t))
	require.NoError(t, err)

	res, err := f.store.Track(o.ID).Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Status)
	require.Len(t, res.Updates, 2)
	assert.Equal(t, "cancelled", res.Updates[1].Status)
	assert.True(t, res.Updates[1].Date.Equal(o.OrderDate.Add(10*time.Minute)))

	missing, err := f.store.Track("nope").Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, models.TrackNotFound, missing.Status)
	assert.NotNil(t, missing.Updates)
	assert.Empty(t, missing.Updates)
}

func TestOrders_AdvanceOneStepAtATime(t *testing.T) {
	f := newFixture(t)
	o := placeOne(t, f, "1")

	_, err := f.store.Advance(o.ID, models.StatusShipped).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	_, err = f.store.Advance(o.ID, models.StatusDelivered).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = f.store.Advance(o.ID, models.StatusProcessing).Await(ctx(t))
	require.NoError(t, err)

	_, err = f.store.Advance(o.ID, models.StatusProcessing).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	_, err = f.store.Advance(o.ID, models.StatusPending).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	_, err = f.store.Advance(o.ID, models.StatusCancelled).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = f.store.Advance(o.ID, models.StatusShipped).Await(ctx(t))
	require.NoError(t, err)
	done, err := f.store.Advance(o.ID, models.StatusDelivered).Await(ctx(t))
	require.NoError(t, err)
	require.NotNil(t, done.DeliveryDate)

	res := services.Timeline(done)
	assert.Len(t, res.Updates, 4)

	_, err = f.store.Advance("ORD404", models.StatusProcessing).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

// interleavingRepo runs before once, after the first read, to stand in for
// another process writing between this store's read and its write.
type interleavingRepo struct {
	repositories.OrderRepository
	once   sync.Once
	before func()
}

func (r *interleavingRepo) FindByID(c context.Context, id string) (models.Order, error) {
	o, err := r.OrderRepository.FindByID(c, id)
	r.once.Do(r.before)
	return o, err
}

// storesSharingRepo returns a store whose reads are followed by one
// advance from a second store over the same repository.
func storesSharingRepo(t *testing.T, orderID string, next models.OrderStatus) *services.OrderStore {
	t.Helper()
	shared := repositories.NewMemoryOrderRepository(models.Order{
		ID:     orderID,
		UserID: "1",
		Status: models.StatusPending,
	})

	otherPool := workerpool.New(1)
	t.Cleanup(otherPool.Shutdown)
	other := services.NewOrderStore(shared, otherPool, event.NewBus())

	hooked := &interleavingRepo{OrderRepository: shared, before: func() {
		_, err := other.Advance(orderID, next).Await(context.Background())
		assert.NoError(t, err)
	}}

	pool := workerpool.New(1)
	t.Cleanup(pool.Shutdown)
	return services.NewOrderStore(hooked, pool, event.NewBus())
}

func TestOrders_CancelLosesToConcurrentAdvance(t *testing.T) {
	store := storesSharingRepo(t, "ORD001", models.StatusProcessing)

	got, err := store.Cancel("ORD001").Await(ctx(t))
	require.NoError(t, err)
	assert.Nil(t, got)

	o, err := store.Get("ORD001").Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, o.Status)
}

func TestOrders_AdvanceRejectsConcurrentlyChangedOrder(t *testing.T) {
	store := storesSharingRepo(t, "ORD001", models.StatusProcessing)

	_, err := store.Advance("ORD001", models.StatusProcessing).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	o, err := store.Get("ORD001").Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, o.Status)
}

func TestOrders_AdvanceActiveSkipsTerminalOrders(t *testing.T) {
	f := newFixture(t)
	pending := placeOne(t, f, "1")
	cancelled := placeOne(t, f, "1")
	_, err := f.store.Cancel(cancelled.ID).Await(ctx(t))
	require.NoError(t, err)

	ids, err := f.store.AdvanceActive().Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, []string{pending.ID}, ids)

	o, err := f.store.Get(pending.ID).Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, o.Status)

	for i := 0; i < 3; i++ {
		_, err = f.store.AdvanceActive().Await(ctx(t))
		require.NoError(t, err)
	}
	o, err = f.store.Get(pending.ID).Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, o.Status)
	assert.NotNil(t, o.DeliveryDate)

	ids, err = f.store.AdvanceActive().Await(ctx(t))
	require.NoError(t, err)
	assert.Empty(t, ids)
}
