package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// TrackNotFound is the TrackResult status for an unknown order id.
const TrackNotFound = "not-found"

var statusRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusCancelled
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanAdvanceTo reports whether next is the single step after s along
// pending → processing → shipped → delivered. Skipping a step is refused
// so the tracking timeline only shows milestones that happened.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	want, ok := s.Next()
	return ok && next == want
}

// Next returns the following forward status, or false when s is terminal.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case StatusPending:
		return StatusProcessing, true
	case StatusProcessing:
		return StatusShipped, true
	case StatusShipped:
		return StatusDelivered, true
	}
	return "", false
}

// OrderItem is a snapshot of a cart line taken when the order is placed.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
	Weight    string `json:"weight,omitempty"`
	Image     string `json:"image,omitempty"`
}

// DeliveryAddress is where an order ships to.
type DeliveryAddress struct {
	FullName     string `json:"fullName"               validate:"required,max=255"`
	PhoneNumber  string `json:"phoneNumber"            validate:"required,digits=10"`
	AddressLine1 string `json:"addressLine1"           validate:"required,max=255"`
	AddressLine2 string `json:"addressLine2,omitempty" validate:"nullable,max=255"`
	City         string `json:"city"                   validate:"required,max=100"`
	State        string `json:"state"                  validate:"required,max=100"`
	Pincode      string `json:"pincode"                validate:"required,digits=6"`
}

// Order is a placed order. Seq preserves insertion order in the database;
// ID is the human-facing "ORD001" style identifier.
type Order struct {
	Seq             uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	ID              string          `gorm:"uniqueIndex;size:16;not null" json:"id"`
	UserID          string          `gorm:"index;size:64;not null" json:"userId"`
	Items           []OrderItem     `gorm:"serializer:json;type:text" json:"items"`
	Total           int             `gorm:"not null" json:"total"`
	Status          OrderStatus     `gorm:"size:16;not null;index" json:"status"`
	PaymentMethod   string          `gorm:"size:100" json:"paymentMethod"`
	DeliveryAddress DeliveryAddress `gorm:"serializer:json;type:text" json:"deliveryAddress"`
	OrderDate       time.Time       `gorm:"not null" json:"orderDate"`
	DeliveryDate    *time.Time      `json:"deliveryDate,omitempty"`
}

func (Order) TableName() string { return "orders" }

// ItemsFromCart snapshots cart lines into order items.
func ItemsFromCart(lines []CartLine) []OrderItem {
	items := make([]OrderItem, len(lines))
	for i, l := range lines {
		items[i] = OrderItem{
			ProductID: l.ID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Weight:    l.Weight,
			Image:     l.Image,
		}
	}
	return items
}

// ItemsTotal sums price × quantity over items.
func ItemsTotal(items []OrderItem) int {
	total := 0
	for _, it := range items {
		total += it.Price * it.Quantity
	}
	return total
}

// TrackingUpdate is one entry of an order's tracking timeline.
type TrackingUpdate struct {
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// TrackResult is the tracking view of an order.
type TrackResult struct {
	Status  string           `json:"status"`
	Updates []TrackingUpdate `json:"updates"`
}
