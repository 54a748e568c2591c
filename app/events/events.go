// Package events names the domain events fired on the application bus and
// their payloads.
package events

import "github.com/shashiranjanraj/meatshop/app/models"

const (
	OrderPlaced            = "order.placed"
	OrderCancelled         = "order.cancelled"
	OrderAdvanced          = "order.advanced"
	PasswordResetRequested = "auth.password_reset_requested"
	OTPRequested           = "auth.otp_requested"
	UserRegistered         = "auth.user_registered"
)

// OrderPlacedPayload accompanies OrderPlaced.
type OrderPlacedPayload struct {
	Order models.Order
	Email string
}

// PasswordResetPayload accompanies PasswordResetRequested.
type PasswordResetPayload struct {
	User  models.User
	Token string
}

// OTPPayload accompanies OTPRequested.
type OTPPayload struct {
	Phone string
	Code  string
}
