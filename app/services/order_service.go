package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shashiranjanraj/meatshop/app/events"
	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
	"github.com/shashiranjanraj/meatshop/pkg/event"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/metrics"
	"github.com/shashiranjanraj/meatshop/pkg/workerpool"
)

var (
	ErrOrderNotFound     = errors.New("orders: order not found")
	ErrInvalidTransition = errors.New("orders: invalid status transition")
)

// Offsets used to synthesise the tracking timeline from the order date.
const (
	trackProcessingAfter = 30 * time.Minute
	trackShippedAfter    = 60 * time.Minute
	trackCancelledAfter  = 10 * time.Minute
)

// OrderStore places, cancels and tracks orders. Every operation runs on
// the worker pool and returns a Future. Writes are serialised so order ids
// stay sequential, and status writes are compare-and-set in the repository
// so another process sharing the database cannot be overwritten.
type OrderStore struct {
	mu   sync.Mutex
	repo repositories.OrderRepository
	pool *workerpool.Pool
	bus  *event.Bus
	now  func() time.Time
	log  *slog.Logger
}

func NewOrderStore(repo repositories.OrderRepository, pool *workerpool.Pool, bus *event.Bus) *OrderStore {
	return &OrderStore{
		repo: repo,
		pool: pool,
		bus:  bus,
		now:  time.Now,
		log:  logger.Component("orders"),
	}
}

// ListForUser returns the user's orders in the order they were placed.
func (s *OrderStore) ListForUser(userID string) *workerpool.Future[[]models.Order] {
	return workerpool.Go(s.pool, func() ([]models.Order, error) {
		orders, err := s.repo.ListByUser(context.Background(), userID)
		if err != nil {
			return nil, fmt.Errorf("orders: list for %s: %w", userID, err)
		}
		return orders, nil
	})
}

// Get returns one order, or ErrOrderNotFound.
func (s *OrderStore) Get(orderID string) *workerpool.Future[models.Order] {
	return workerpool.Go(s.pool, func() (models.Order, error) {
		return s.find(context.Background(), orderID)
	})
}

// Place records a new pending order with the next sequential id. The
// total is stored exactly as given.
func (s *OrderStore) Place(userID string, items []models.OrderItem, total int, address models.DeliveryAddress, paymentMethod string) *workerpool.Future[models.Order] {
	items = append([]models.OrderItem(nil), items...)

	return workerpool.Go(s.pool, func() (models.Order, error) {
		ctx := context.Background()

		s.mu.Lock()
		defer s.mu.Unlock()

		n, err := s.repo.Count(ctx)
		if err != nil {
			return models.Order{}, fmt.Errorf("orders: place: count: %w", err)
		}

		order := models.Order{
			ID:              fmt.Sprintf("ORD%03d", n+1),
			UserID:          userID,
			Items:           items,
			Total:           total,
			Status:          models.StatusPending,
			PaymentMethod:   paymentMethod,
			DeliveryAddress: address,
			OrderDate:       s.now(),
		}
		if err := s.repo.Create(ctx, &order); err != nil {
			return models.Order{}, fmt.Errorf("orders: place: %w", err)
		}

		metrics.OrderEvents.WithLabelValues("placed").Inc()
		metrics.OrderValue.Observe(float64(total))
		s.log.Info("order placed", "order_id", order.ID, "user_id", userID, "total", total)
		return order, nil
	})
}

// Cancel moves a pending order to cancelled. Any other status, or an
// unknown id, resolves to (nil, nil) and changes nothing.
func (s *OrderStore) Cancel(orderID string) *workerpool.Future[*models.Order] {
	return workerpool.Go(s.pool, func() (*models.Order, error) {
		ctx := context.Background()

		s.mu.Lock()
		defer s.mu.Unlock()

		order, err := s.find(ctx, orderID)
		if errors.Is(err, ErrOrderNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if order.Status != models.StatusPending {
			return nil, nil
		}

		order.Status = models.StatusCancelled
		err = s.repo.UpdateStatus(ctx, &order, models.StatusPending)
		if errors.Is(err, repositories.ErrConflict) {
			s.log.Info("cancel lost to a concurrent status change", "order_id", orderID)
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("orders: cancel %s: %w", orderID, err)
		}

		metrics.OrderEvents.WithLabelValues("cancelled").Inc()
		s.log.Info("order cancelled", "order_id", orderID)
		s.bus.Fire(events.OrderCancelled, order)
		return &order, nil
	})
}

// Advance applies an operator-driven transition to the next status along
// pending → processing → shipped → delivered. Delivering stamps the
// delivery date.
func (s *OrderStore) Advance(orderID string, next models.OrderStatus) *workerpool.Future[models.Order] {
	return workerpool.Go(s.pool, func() (models.Order, error) {
		ctx := context.Background()

		s.mu.Lock()
		defer s.mu.Unlock()

		order, err := s.find(ctx, orderID)
		if err != nil {
			return models.Order{}, err
		}
		if !order.Status.CanAdvanceTo(next) {
			return models.Order{}, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, order.Status, next)
		}

		from := order.Status
		order.Status = next
		if next == models.StatusDelivered {
			now := s.now()
			order.DeliveryDate = &now
		}
		err = s.repo.UpdateStatus(ctx, &order, from)
		if errors.Is(err, repositories.ErrConflict) {
			return models.Order{}, fmt.Errorf("%w: %s changed while advancing to %s", ErrInvalidTransition, orderID, next)
		}
		if err != nil {
			return models.Order{}, fmt.Errorf("orders: advance %s: %w", orderID, err)
		}

		metrics.OrderEvents.WithLabelValues("advanced").Inc()
		s.log.Info("order advanced", "order_id", orderID, "status", next)
		s.bus.Fire(events.OrderAdvanced, order)
		return order, nil
	})
}

// AdvanceActive moves every active order one step along the lifecycle and
// returns the ids it advanced. It backs the delivery simulation task.
func (s *OrderStore) AdvanceActive() *workerpool.Future[[]string] {
	return workerpool.Go(s.pool, func() ([]string, error) {
		ctx := context.Background()

		s.mu.Lock()
		defer s.mu.Unlock()

		active, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("orders: list active: %w", err)
		}

		advanced := make([]string, 0, len(active))
		for _, order := range active {
			next, ok := order.Status.Next()
			if !ok {
				continue
			}
			from := order.Status
			order.Status = next
			if next == models.StatusDelivered {
				now := s.now()
				order.DeliveryDate = &now
			}
			err := s.repo.UpdateStatus(ctx, &order, from)
			if errors.Is(err, repositories.ErrConflict) {
				continue
			}
			if err != nil {
				return advanced, fmt.Errorf("orders: advance %s: %w", order.ID, err)
			}
			metrics.OrderEvents.WithLabelValues("advanced").Inc()
			s.bus.Fire(events.OrderAdvanced, order)
			advanced = append(advanced, order.ID)
		}
		if len(advanced) > 0 {
			s.log.Info("orders advanced", "count", len(advanced))
		}
		return advanced, nil
	})
}

// Track builds the tracking timeline of an order. An unknown id resolves
// to status "not-found" with no updates rather than an error.
func (s *OrderStore) Track(orderID string) *workerpool.Future[models.TrackResult] {
	return workerpool.Go(s.pool, func() (models.TrackResult, error) {
		order, err := s.find(context.Background(), orderID)
		if errors.Is(err, ErrOrderNotFound) {
			return models.TrackResult{Status: models.TrackNotFound, Updates: []models.TrackingUpdate{}}, nil
		}
		if err != nil {
			return models.TrackResult{}, err
		}
		return Timeline(order), nil
	})
}

// Timeline derives the tracking updates for order from its status and dates.
func Timeline(order models.Order) models.TrackResult {
	st := order.Status
	updates := []models.TrackingUpdate{{
		Status:      "ordered",
		Date:        order.OrderDate,
		Description: "Order placed successfully",
	}}

	if st == models.StatusProcessing || st == models.StatusShipped || st == models.StatusDelivered {
		updates = append(updates, models.TrackingUpdate{
			Status:      "processing",
			Date:        order.OrderDate.Add(trackProcessingAfter),
			Description: "Order confirmed and being processed",
		})
	}
	if st == models.StatusShipped || st == models.StatusDelivered {
		updates = append(updates, models.TrackingUpdate{
			Status:      "shipped",
			Date:        order.OrderDate.Add(trackShippedAfter),
			Description: "Order has been shipped",
		})
	}
	if st == models.StatusDelivered && order.DeliveryDate != nil {
		updates = append(updates, models.TrackingUpdate{
			Status:      "delivered",
			Date:        *order.DeliveryDate,
			Description: "Order has been delivered",
		})
	}
	if st == models.StatusCancelled {
		updates = append(updates, models.TrackingUpdate{
			Status:      "cancelled",
			Date:        order.OrderDate.Add(trackCancelledAfter),
			Description: "Order has been cancelled",
		})
	}

	return models.TrackResult{Status: string(st), Updates: updates}
}

func (s *OrderStore) find(ctx context.Context, orderID string) (models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("orders: find %s: %w", orderID, err)
	}
	return order, nil
}
