package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/response"
)

type CatalogController struct {
	catalog *services.Catalog
}

func NewCatalogController(catalog *services.Catalog) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// Index lists products. Query: group (main category), category (cut), q.
func (c *CatalogController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	response.Success(w, c.catalog.Products(services.ProductFilter{
		Group:    q.Get("group"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
	}))
}

func (c *CatalogController) Categories(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.catalog.Categories())
}

func (c *CatalogController) Combos(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.catalog.Combos())
}

func (c *CatalogController) Show(w http.ResponseWriter, r *http.Request) {
	p, err := c.catalog.Product(param(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, p)
}
