package models

// CartLine is one line of the shopping cart. Price is in whole rupees.
// Catalog lines use "<productId>-<weight>" as ID; combo packs use the pack
// name with IsCombo set.
type CartLine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Weight   string `json:"weight,omitempty"`
	Image    string `json:"image,omitempty"`
	IsCombo  bool   `json:"isCombo,omitempty"`
}

// LineTotal is price × quantity.
func (l CartLine) LineTotal() int { return l.Price * l.Quantity }

// LineID builds the cart line id for a product variant.
func LineID(productID, weight string) string {
	return productID + "-" + weight
}
