package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/response"
)

type CheckoutController struct {
	checkout *services.Checkout
	auth     *services.AuthStore
}

func NewCheckoutController(checkout *services.Checkout, auth *services.AuthStore) *CheckoutController {
	return &CheckoutController{checkout: checkout, auth: auth}
}

func (c *CheckoutController) Show(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]any{
		"summary":        c.checkout.Summary(),
		"paymentMethods": models.PaymentMethods,
	})
}

func (c *CheckoutController) Place(w http.ResponseWriter, r *http.Request) {
	if _, err := sessionUser(c.auth, r); err != nil {
		fail(w, r, err)
		return
	}
	var form services.CheckoutForm
	if !decode(w, r, &form) {
		return
	}
	order, err := c.checkout.PlaceOrder(r.Context(), form)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, order)
}
