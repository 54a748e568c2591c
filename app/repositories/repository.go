// Package repositories persists users and orders. Each repository has an
// in-memory implementation (the default, seeded with the demo account) and
// a GORM implementation selected with REPO_DRIVER=database.
package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/meatshop/app/models"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("repositories: record not found")
	// ErrDuplicate is returned when a unique key (user email, order id) is taken.
	ErrDuplicate = errors.New("repositories: duplicate record")
	// ErrConflict is returned when a record changed since it was read.
	ErrConflict = errors.New("repositories: record changed concurrently")
)

// UserRepository stores user accounts. Emails are matched exactly; callers
// normalise them first.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// OrderRepository stores orders. List methods return insertion order.
type OrderRepository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// ListActive returns every order that is neither delivered nor cancelled.
	ListActive(ctx context.Context) ([]models.Order, error)
	// UpdateStatus writes order's status and delivery date only if the
	// stored status still equals from. Otherwise it returns ErrConflict.
	UpdateStatus(ctx context.Context, order *models.Order, from models.OrderStatus) error
}
