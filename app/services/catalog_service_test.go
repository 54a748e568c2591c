package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/services"
)

func ids(ps []models.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestCatalog_ProductIDsAreUnique(t *testing.T) {
	c := services.NewCatalog()
	all := c.Products(services.ProductFilter{})
	require.NotEmpty(t, all)

	seen := map[string]bool{}
	for _, p := range all {
		assert.False(t, seen[p.ID], p.ID)
		seen[p.ID] = true
		assert.NotEmpty(t, p.Variants, p.ID)
	}
}

func TestCatalog_Filters(t *testing.T) {
	c := services.NewCatalog()

	assert.Equal(t, []string{"CN001", "CN002", "CN003"}, ids(c.Products(services.ProductFilter{Group: "country-chicken"})))
	assert.Equal(t, []string{"BL001", "BL002"}, ids(c.Products(services.ProductFilter{Group: "Chicken", Category: "boneless"})))
	assert.Equal(t, []string{"OF001"}, ids(c.Products(services.ProductFilter{Query: "LIVER"})))
	assert.Empty(t, c.Products(services.ProductFilter{Group: "japanese-quail"}))
	assert.Len(t, c.Categories(), 5)
}

func TestCatalog_Line(t *testing.T) {
	c := services.NewCatalog()

	l, err := c.Line("cc001", "1 kg", 2)
	require.NoError(t, err)
	assert.Equal(t, "CC001-1 kg", l.ID)
	assert.Equal(t, 170, l.Price)
	assert.Equal(t, 2, l.Quantity)
	assert.False(t, l.IsCombo)

	half, err := c.Line("GT001", "1/2 kg", 1)
	require.NoError(t, err)
	assert.Equal(t, 400, half.Price)

	_, err = c.Line("CC001", "2 kg", 1)
	assert.ErrorIs(t, err, services.ErrVariantNotFound)
	_, err = c.Line("XX999", "1 kg", 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestCatalog_ComboLine(t *testing.T) {
	c := services.NewCatalog()

	l, err := c.ComboLine("gym protein pack", 1)
	require.NoError(t, err)
	assert.Equal(t, "Gym Protein Pack", l.ID)
	assert.True(t, l.IsCombo)
	assert.Equal(t, 100, l.Price)

	_, err = c.ComboLine("Mystery Pack", 1)
	assert.ErrorIs(t, err, services.ErrComboNotFound)
	assert.Len(t, c.Combos(), 4)
}
