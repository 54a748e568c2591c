package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/pkg/collection"
)

var (
	ErrProductNotFound = errors.New("catalog: product not found")
	ErrVariantNotFound = errors.New("catalog: variant not found")
	ErrComboNotFound   = errors.New("catalog: combo pack not found")
)

// ProductFilter narrows Products. Empty fields match everything.
type ProductFilter struct {
	Group    string // main category name or slug
	Category string // cut, e.g. "Boneless"
	Query    string // case-insensitive substring of name or description
}

// Catalog serves the static product list. It is read-only and safe for
// concurrent use.
type Catalog struct {
	byID       map[string]models.Product
	categories []models.MainCategory
}

func NewCatalog() *Catalog {
	return &Catalog{
		byID:       collection.KeyBy(products, func(p models.Product) string { return p.ID }),
		categories: mainCategories,
	}
}

// Categories returns the main categories in display order.
func (c *Catalog) Categories() []models.MainCategory {
	return append([]models.MainCategory(nil), c.categories...)
}

// Products returns the products matching f in catalog order.
func (c *Catalog) Products(f ProductFilter) []models.Product {
	group := c.groupName(f.Group)
	q := strings.ToLower(strings.TrimSpace(f.Query))

	return collection.Filter(products, func(p models.Product) bool {
		if group != "" && !strings.EqualFold(p.Group, group) {
			return false
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			return false
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
		return true
	})
}

// Product looks a product up by id.
func (c *Catalog) Product(id string) (models.Product, error) {
	p, ok := c.byID[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

// Combos returns every combo pack.
func (c *Catalog) Combos() []models.ComboPack {
	return append([]models.ComboPack(nil), comboPacks...)
}

// Combo looks a combo pack up by name.
func (c *Catalog) Combo(name string) (models.ComboPack, error) {
	pack, ok := collection.First(comboPacks, func(p models.ComboPack) bool {
		return strings.EqualFold(p.Name, strings.TrimSpace(name))
	})
	if !ok {
		return models.ComboPack{}, fmt.Errorf("%w: %s", ErrComboNotFound, name)
	}
	return pack, nil
}

// Line builds the cart line for quantity units of a product variant.
func (c *Catalog) Line(productID, weight string, quantity int) (models.CartLine, error) {
	p, err := c.Product(productID)
	if err != nil {
		return models.CartLine{}, err
	}
	v, ok := p.Variant(weight)
	if !ok {
		return models.CartLine{}, fmt.Errorf("%w: %s %q", ErrVariantNotFound, p.ID, weight)
	}
	line := p.CartLine(v)
	line.Quantity = quantity
	return line, nil
}

// ComboLine builds the cart line for quantity units of a combo pack.
func (c *Catalog) ComboLine(name string, quantity int) (models.CartLine, error) {
	pack, err := c.Combo(name)
	if err != nil {
		return models.CartLine{}, err
	}
	line := pack.CartLine()
	line.Quantity = quantity
	return line, nil
}

// groupName resolves a slug like "country-chicken" to its display name.
func (c *Catalog) groupName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, mc := range c.categories {
		if strings.EqualFold(mc.Slug, s) || strings.EqualFold(mc.Name, s) {
			return mc.Name
		}
	}
	return s
}
