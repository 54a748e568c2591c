package models

// Variant is a purchasable weight of a product.
type Variant struct {
	Weight string `json:"weight"`
	Price  int    `json:"price"`
}

// Product is a catalog item. Group is the main category ("Chicken",
// "Goat", ...); Category is the cut within it ("Curry Cut", "Offal", ...).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Group       string    `json:"group"`
	Category    string    `json:"category"`
	Variants    []Variant `json:"variants"`
	Note        string    `json:"note,omitempty"`
}

// Variant returns the variant with the given weight.
func (p Product) Variant(weight string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Weight == weight {
			return v, true
		}
	}
	return Variant{}, false
}

// CartLine builds the cart line for one unit of variant v.
func (p Product) CartLine(v Variant) CartLine {
	return CartLine{
		ID:       LineID(p.ID, v.Weight),
		Name:     p.Name,
		Price:    v.Price,
		Quantity: 1,
		Weight:   v.Weight,
		Image:    p.Image,
	}
}

// ComboPack is a fixed bundle sold as one cart line.
type ComboPack struct {
	Name   string   `json:"name"`
	Items  []string `json:"items"`
	Weight string   `json:"weight"`
	Price  int      `json:"price"`
	Image  string   `json:"image"`
}

// CartLine builds the cart line for one combo pack.
func (c ComboPack) CartLine() CartLine {
	return CartLine{
		ID:       c.Name,
		Name:     c.Name,
		Price:    c.Price,
		Quantity: 1,
		Weight:   c.Weight,
		Image:    c.Image,
		IsCombo:  true,
	}
}

// MainCategory is a top-level catalog section.
type MainCategory struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// PaymentMethod is a checkout payment option.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PaymentMethods lists the supported payment options.
var PaymentMethods = []PaymentMethod{
	{ID: "cod", Name: "Cash on Delivery"},
	{ID: "online", Name: "Online Payment (Credit/Debit Card, UPI, Net Banking)"},
}

// PaymentLabel returns the display name stored on an order for id.
func PaymentLabel(id string) (string, bool) {
	for _, m := range PaymentMethods {
		if m.ID == id {
			return m.Name, true
		}
	}
	return "", false
}
