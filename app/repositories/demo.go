package repositories

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/pkg/auth"
)

// Demo account credentials. The storefront ships with this account and one
// delivered order so a fresh install has something to log in to and track.
const (
	DemoUserID       = "1"
	DemoUserEmail    = "test@example.com"
	DemoUserPassword = "password123"
)

// DemoUser returns the seeded account with a freshly hashed password.
func DemoUser() (models.User, error) {
	hash, err := auth.HashPassword(DemoUserPassword)
	if err != nil {
		return models.User{}, fmt.Errorf("repositories: hash demo password: %w", err)
	}
	return models.User{
		ID:       DemoUserID,
		Name:     "Test User",
		Email:    DemoUserEmail,
		Phone:    "1234567890",
		Address:  "123 Test Street",
		Password: hash,
	}, nil
}

// DemoOrders returns the seeded order history of the demo account.
func DemoOrders() []models.Order {
	delivered := time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC)
	return []models.Order{{
		ID:     "ORD001",
		UserID: DemoUserID,
		Items: []models.OrderItem{
			{ProductID: "PROD001", Name: "Chicken Curry Cut", Quantity: 2, Price: 180, Weight: "500g", Image: "assets/images/chicken-curry-cut.jpg"},
			{ProductID: "PROD002", Name: "Goat Curry Cut", Quantity: 1, Price: 400, Weight: "500g", Image: "assets/images/goat-curry-cut.jpg"},
		},
		Total:         760,
		Status:        models.StatusDelivered,
		PaymentMethod: "Cash on Delivery",
		DeliveryAddress: models.DeliveryAddress{
			FullName:     "Test User",
			PhoneNumber:  "1234567890",
			AddressLine1: "123 Test Street",
			City:         "Test City",
			State:        "Test State",
			Pincode:      "123456",
		},
		OrderDate:    time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		DeliveryDate: &delivered,
	}}
}
