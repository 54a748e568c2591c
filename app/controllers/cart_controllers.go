package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/response"
	"github.com/shashiranjanraj/meatshop/pkg/ws"
)

type CartController struct {
	cart    *services.CartStore
	catalog *services.Catalog
	hub     *ws.Hub
}

func NewCartController(cart *services.CartStore, catalog *services.Catalog, hub *ws.Hub) *CartController {
	return &CartController{cart: cart, catalog: catalog, hub: hub}
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"nullable,max=32"`
	Weight    string `json:"weight"    validate:"nullable,max=32"`
	Combo     string `json:"combo"     validate:"nullable,max=100"`
	Quantity  int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (c *CartController) Show(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, services.Summarize(c.cart.Items()))
}

// Add puts a catalog variant (productId + weight) or a combo pack in the cart.
func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		line models.CartLine
		err  error
	)
	switch {
	case req.Combo != "":
		line, err = c.catalog.ComboLine(req.Combo, req.Quantity)
	case req.ProductID != "" && req.Weight != "":
		line, err = c.catalog.Line(req.ProductID, req.Weight, req.Quantity)
	default:
		response.ValidationError(w, map[string]string{
			"productId": "Either productId and weight, or combo, is required.",
		})
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}

	c.mutate(w, r, "Added to cart", func() error { return c.cart.Add(line) })
}

func (c *CartController) Decrement(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	c.mutate(w, r, "Cart updated", func() error { return c.cart.Remove(id) })
}

func (c *CartController) Update(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	id := param(r, "id")
	c.mutate(w, r, "Cart updated", func() error { return c.cart.SetQuantity(id, req.Quantity) })
}

func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	c.mutate(w, r, "Removed from cart", func() error { return c.cart.RemoveCompletely(id) })
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, "Cart cleared", c.cart.Clear)
}

// Stream upgrades to a websocket that receives every cart snapshot.
func (c *CartController) Stream(w http.ResponseWriter, r *http.Request) {
	c.hub.Upgrade(w, r)
}

func (c *CartController) mutate(w http.ResponseWriter, r *http.Request, msg string, op func() error) {
	if err := op(); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, msg, services.Summarize(c.cart.Items()))
}
