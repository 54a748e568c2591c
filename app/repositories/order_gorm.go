package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/pkg/metrics"
)

// GormOrderRepository stores orders in the orders table. Items and the
// delivery address are JSON columns.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveDBQuery("orders.count", time.Now())

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	defer metrics.ObserveDBQuery("orders.create", time.Now())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: order %s", ErrDuplicate, order.ID)
		}
		return translate(tx.Create(order).Error)
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (models.Order, error) {
	defer metrics.ObserveDBQuery("orders.find_by_id", time.Now())

	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	return order, translate(err)
}

func (r *GormOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("orders.list_by_user", time.Now())

	orders := make([]models.Order, 0)
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("seq asc").Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) ListActive(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("orders.list_active", time.Now())

	orders := make([]models.Order, 0)
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []models.OrderStatus{models.StatusDelivered, models.StatusCancelled}).
		Order("seq asc").Find(&orders).Error
	return orders, err
}

// UpdateStatus persists a status transition as a compare-and-set on the
// previous status, so writers in other processes cannot be overwritten.
// Items and totals are immutable.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, order *models.Order, from models.OrderStatus) error {
	defer metrics.ObserveDBQuery("orders.update_status", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]any{
			"status":        order.Status,
			"delivery_date": order.DeliveryDate,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return fmt.Errorf("%w: order %s is no longer %s", ErrConflict, order.ID, from)
}
