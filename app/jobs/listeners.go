package jobs

import (
	"context"

	"github.com/shashiranjanraj/meatshop/app/events"
	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/pkg/event"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/queue"
)

// Listen queues a job for every domain event that notifies someone.
// Dispatch failures are logged; the event that caused them has already
// happened and is not rolled back.
func Listen(bus *event.Bus, q *queue.Manager) {
	log := logger.Component("jobs")

	dispatch := func(job queue.Job) {
		if err := q.Dispatch(context.Background(), job); err != nil {
			log.Error("dispatch failed", "job", job.Name(), "error", err)
		}
	}

	bus.Listen(events.OrderPlaced, func(p any) {
		if pl, ok := p.(events.OrderPlacedPayload); ok {
			dispatch(&OrderConfirmation{Order: pl.Order, Email: pl.Email})
		}
	})
	for _, name := range []string{events.OrderCancelled, events.OrderAdvanced} {
		bus.Listen(name, func(p any) {
			if o, ok := p.(models.Order); ok {
				dispatch(&OrderStatus{Order: o})
			}
		})
	}
	bus.Listen(events.PasswordResetRequested, func(p any) {
		if pl, ok := p.(events.PasswordResetPayload); ok {
			dispatch(&PasswordReset{UserName: pl.User.Name, Email: pl.User.Email, Token: pl.Token})
		}
	})
	bus.Listen(events.UserRegistered, func(p any) {
		if u, ok := p.(models.User); ok {
			dispatch(&Welcome{UserName: u.Name, Email: u.Email})
		}
	})
	bus.Listen(events.OTPRequested, func(p any) {
		if pl, ok := p.(events.OTPPayload); ok {
			dispatch(&OTP{Phone: pl.Phone, Code: pl.Code})
		}
	})
}
