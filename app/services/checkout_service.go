package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shashiranjanraj/meatshop/app/events"
	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/pkg/collection"
	"github.com/shashiranjanraj/meatshop/pkg/event"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/validate"
)

// DeliveryFee is the flat charge added to every order, in rupees.
const DeliveryFee = 40

var ErrEmptyCart = errors.New("checkout: cart is empty")

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// Subtotal is the sum of price × quantity over items.
func Subtotal(items []models.CartLine) int {
	return collection.SumBy(items, func(l models.CartLine) int { return l.LineTotal() })
}

// Total is Subtotal plus DeliveryFee.
func Total(items []models.CartLine) int {
	return Subtotal(items) + DeliveryFee
}

// ItemCount is the number of units across items.
func ItemCount(items []models.CartLine) int {
	return collection.SumBy(items, func(l models.CartLine) int { return l.Quantity })
}

// Summary is the priced view of a set of cart lines.
type Summary struct {
	Items       []models.CartLine `json:"items"`
	ItemCount   int               `json:"itemCount"`
	Subtotal    int               `json:"subtotal"`
	DeliveryFee int               `json:"deliveryFee"`
	Total       int               `json:"total"`
}

// Summarize prices items.
func Summarize(items []models.CartLine) Summary {
	return Summary{
		Items:       items,
		ItemCount:   ItemCount(items),
		Subtotal:    Subtotal(items),
		DeliveryFee: DeliveryFee,
		Total:       Total(items),
	}
}

// CheckoutForm is the delivery address plus the chosen payment method.
type CheckoutForm struct {
	models.DeliveryAddress
	PaymentMethod string `json:"paymentMethod" validate:"required,in=cod,online"`
}

// Checkout turns the live cart into an order.
type Checkout struct {
	cart   *CartStore
	orders *OrderStore
	auth   *AuthStore
	bus    *event.Bus
}

func NewCheckout(cart *CartStore, orders *OrderStore, auth *AuthStore, bus *event.Bus) *Checkout {
	return &Checkout{
		cart:   cart,
		orders: orders,
		auth:   auth,
		bus:    bus,
	}
}

// Summary prices the live cart.
func (c *Checkout) Summary() Summary {
	return Summarize(c.cart.Items())
}

// PlaceOrder validates form, freezes the cart total and places the order.
// The ordered lines leave the cart only once the order exists; anything
// added meanwhile stays. Cancelling ctx does not abandon an order that is
// already being placed.
func (c *Checkout) PlaceOrder(ctx context.Context, form CheckoutForm) (models.Order, error) {
	if errs := validate.Struct(form); validate.HasErrors(errs) {
		return models.Order{}, &ValidationError{Fields: errs}
	}

	user := c.auth.CurrentUser()
	if user == nil {
		return models.Order{}, ErrNotLoggedIn
	}

	snapshot := c.cart.Items()
	if len(snapshot) == 0 {
		return models.Order{}, ErrEmptyCart
	}
	total := Total(snapshot)
	payment, _ := models.PaymentLabel(form.PaymentMethod)

	order, err := c.orders.
		Place(user.ID, models.ItemsFromCart(snapshot), total, form.DeliveryAddress, payment).
		Await(context.WithoutCancel(ctx))
	if err != nil {
		return models.Order{}, fmt.Errorf("checkout: place order: %w", err)
	}

	if err := c.cart.Release(snapshot); err != nil {
		logger.WithCtx(ctx).Warn("ordered lines not released from cart", "order_id", order.ID, "error", err)
	}

	c.bus.Fire(events.OrderPlaced, events.OrderPlacedPayload{Order: order, Email: user.Email})
	return order, nil
}
