package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/meatshop/app/events"
	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/workerpool"
)

func validForm() services.CheckoutForm {
	return services.CheckoutForm{DeliveryAddress: testAddress, PaymentMethod: "cod"}
}

func TestTotals(t *testing.T) {
	items := []models.CartLine{line("a", 170, 2), line("b", 100, 1)}

	assert.Equal(t, 440, services.Subtotal(items))
	assert.Equal(t, 480, services.Total(items))
	assert.Equal(t, 3, services.ItemCount(items))

	assert.Equal(t, 0, services.Subtotal(nil))
	assert.Equal(t, services.DeliveryFee, services.Total(nil))

	sum := services.Summarize(items)
	assert.Equal(t, services.Summary{Items: items, ItemCount: 3, Subtotal: 440, DeliveryFee: 40, Total: 480}, sum)
}

func TestCheckout_RequiresSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cart.Add(line("a", 100, 1)))

	_, err := f.checkout.PlaceOrder(ctx(t), validForm())
	assert.ErrorIs(t, err, services.ErrNotLoggedIn)
	assert.Len(t, f.cart.Items(), 1)
}

func TestCheckout_RequiresItems(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	_, err := f.checkout.PlaceOrder(ctx(t), validForm())
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckout_ValidatesForm(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.cart.Add(line("a", 100, 1)))

	form := validForm()
	form.PhoneNumber = "12345"
	form.Pincode = "12"
	form.City = ""
	form.PaymentMethod = "crypto"

	_, err := f.checkout.PlaceOrder(ctx(t), form)
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"phoneNumber", "pincode", "city", "paymentMethod"} {
		assert.Contains(t, verr.Fields, field)
	}
	assert.NotContains(t, verr.Fields, "addressLine2")

	n, err := f.orders.Count(ctx(t))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "no order placed")
}

func TestCheckout_PlaceOrderFreezesTotalThenClearsCart(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.cart.Add(line("CC001-1 kg", 170, 2)))
	require.NoError(t, f.cart.Add(line("Gym Protein Pack", 100, 1)))

	var placed []events.OrderPlacedPayload
	f.bus.Listen(events.OrderPlaced, func(p any) { placed = append(placed, p.(events.OrderPlacedPayload)) })

	// When the cart empties, the order must already exist.
	var existedAtClear []bool
	defer f.cart.Subscribe(func(items []models.CartLine) {
		if len(items) == 0 {
			n, _ := f.orders.Count(context.Background())
			existedAtClear = append(existedAtClear, n == 2)
		}
	})()

	order, err := f.checkout.PlaceOrder(ctx(t), validForm())
	require.NoError(t, err)

	assert.Equal(t, "ORD002", order.ID)
	assert.Equal(t, 480, order.Total)
	assert.Equal(t, models.ItemsTotal(order.Items)+services.DeliveryFee, order.Total)
	assert.Equal(t, "Cash on Delivery", order.PaymentMethod)
	assert.Equal(t, repositories.DemoUserID, order.UserID)
	assert.Equal(t, testAddress, order.DeliveryAddress)

	assert.Empty(t, f.cart.Items())
	assert.Equal(t, []bool{true}, existedAtClear)

	require.Len(t, placed, 1)
	assert.Equal(t, "test@example.com", placed[0].Email)
	assert.Equal(t, order.ID, placed[0].Order.ID)
}

// lateLineRepo adds a line to the cart while the order is being created.
type lateLineRepo struct {
	repositories.OrderRepository
	cart *services.CartStore
}

func (r *lateLineRepo) Create(c context.Context, order *models.Order) error {
	if err := r.cart.Add(line("late", 90, 1)); err != nil {
		return err
	}
	return r.OrderRepository.Create(c, order)
}

func TestCheckout_LinesAddedDuringPlacementStayInCart(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.cart.Add(line("CC001-1 kg", 170, 1)))

	pool := workerpool.New(2)
	t.Cleanup(pool.Shutdown)
	store := services.NewOrderStore(&lateLineRepo{OrderRepository: f.orders, cart: f.cart}, pool, f.bus)
	checkout := services.NewCheckout(f.cart, store, f.auth, f.bus)

	order, err := checkout.PlaceOrder(ctx(t), validForm())
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "CC001-1 kg", order.Items[0].ProductID)
	assert.Equal(t, []models.CartLine{line("late", 90, 1)}, f.cart.Items())
}

func TestCheckout_CancelledContextStillCompletes(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.cart.Add(line("a", 100, 1)))

	c, cancel := context.WithCancel(context.Background())
	cancel()

	order, err := f.checkout.PlaceOrder(c, validForm())
	require.NoError(t, err)
	assert.Equal(t, 140, order.Total)
	assert.Empty(t, f.cart.Items())
}

func TestCheckout_Summary(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cart.Add(line("a", 85, 2)))

	sum := f.checkout.Summary()
	assert.Equal(t, 2, sum.ItemCount)
	assert.Equal(t, 170, sum.Subtotal)
	assert.Equal(t, 210, sum.Total)
}
