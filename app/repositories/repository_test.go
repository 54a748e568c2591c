package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
)

// openSQLite returns an isolated in-memory database, or skips when the
// sqlite driver is unavailable (CGO disabled).
func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Order{}); err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	return db
}

var userRepos = map[string]func(t *testing.T) repositories.UserRepository{
	"memory": func(*testing.T) repositories.UserRepository { return repositories.NewMemoryUserRepository() },
	"gorm":   func(t *testing.T) repositories.UserRepository { return repositories.NewGormUserRepository(openSQLite(t)) },
}

var orderRepos = map[string]func(t *testing.T) repositories.OrderRepository{
	"memory": func(*testing.T) repositories.OrderRepository { return repositories.NewMemoryOrderRepository() },
	"gorm":   func(t *testing.T) repositories.OrderRepository { return repositories.NewGormOrderRepository(openSQLite(t)) },
}

func TestUserRepository(t *testing.T) {
	for name, mk := range userRepos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := mk(t)

			u := &models.User{ID: "u1", Name: "Asha", Email: "asha@example.com", Password: "hash"}
			require.NoError(t, repo.Create(ctx, u))

			dup := &models.User{ID: "u2", Name: "Other", Email: "asha@example.com", Password: "hash"}
			assert.ErrorIs(t, repo.Create(ctx, dup), repositories.ErrDuplicate)

			got, err := repo.FindByEmail(ctx, "asha@example.com")
			require.NoError(t, err)
			assert.Equal(t, "u1", got.ID)

			got.Phone = "9876543210"
			require.NoError(t, repo.Update(ctx, &got))

			again, err := repo.FindByID(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "9876543210", again.Phone)

			_, err = repo.FindByEmail(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			assert.ErrorIs(t, repo.Update(ctx, &models.User{ID: "missing"}), repositories.ErrNotFound)
		})
	}
}

func TestOrderRepository(t *testing.T) {
	for name, mk := range orderRepos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := mk(t)

			for i, uid := range []string{"1", "2", "1"} {
				o := &models.Order{
					ID:        fmt.Sprintf("ORD%03d", i+1),
					UserID:    uid,
					Items:     []models.OrderItem{{ProductID: "CC001-1 kg", Name: "Chicken", Quantity: 1, Price: 170}},
					Total:     210,
					Status:    models.StatusPending,
					OrderDate: time.Date(2024, 2, 15, 10, 0, i, 0, time.UTC),
				}
				require.NoError(t, repo.Create(ctx, o))
			}

			n, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 3, n)

			assert.ErrorIs(t, repo.Create(ctx, &models.Order{ID: "ORD001", UserID: "1", Status: models.StatusPending}), repositories.ErrDuplicate)

			mine, err := repo.ListByUser(ctx, "1")
			require.NoError(t, err)
			require.Len(t, mine, 2)
			assert.Equal(t, "ORD001", mine[0].ID)
			assert.Equal(t, "ORD003", mine[1].ID)
			assert.Equal(t, 170, mine[0].Items[0].Price)

			none, err := repo.ListByUser(ctx, "nobody")
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)

			o, err := repo.FindByID(ctx, "ORD002")
			require.NoError(t, err)
			delivered := time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC)
			o.Status = models.StatusDelivered
			o.DeliveryDate = &delivered
			require.NoError(t, repo.UpdateStatus(ctx, &o, models.StatusPending))

			o, err = repo.FindByID(ctx, "ORD002")
			require.NoError(t, err)
			assert.Equal(t, models.StatusDelivered, o.Status)
			require.NotNil(t, o.DeliveryDate)
			assert.True(t, delivered.Equal(*o.DeliveryDate))

			active, err := repo.ListActive(ctx)
			require.NoError(t, err)
			require.Len(t, active, 2)
			assert.Equal(t, "ORD001", active[0].ID)
			assert.Equal(t, "ORD003", active[1].ID)

			_, err = repo.FindByID(ctx, "ORD999")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestOrderRepository_UpdateStatusComparesPreviousStatus(t *testing.T) {
	for name, mk := range orderRepos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := mk(t)
			require.NoError(t, repo.Create(ctx, &models.Order{ID: "ORD001", UserID: "1", Status: models.StatusPending}))

			// Another writer moves the order on after this one read it.
			advanced, err := repo.FindByID(ctx, "ORD001")
			require.NoError(t, err)
			stale := advanced
			advanced.Status = models.StatusProcessing
			require.NoError(t, repo.UpdateStatus(ctx, &advanced, models.StatusPending))

			stale.Status = models.StatusCancelled
			assert.ErrorIs(t, repo.UpdateStatus(ctx, &stale, models.StatusPending), repositories.ErrConflict)

			got, err := repo.FindByID(ctx, "ORD001")
			require.NoError(t, err)
			assert.Equal(t, models.StatusProcessing, got.Status)

			missing := &models.Order{ID: "ORD404", Status: models.StatusCancelled}
			assert.ErrorIs(t, repo.UpdateStatus(ctx, missing, models.StatusPending), repositories.ErrNotFound)
		})
	}
}

func TestMemoryOrderRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryOrderRepository(models.Order{
		ID:     "ORD001",
		UserID: "1",
		Items:  []models.OrderItem{{ProductID: "a", Quantity: 1, Price: 10}},
		Status: models.StatusPending,
	})

	o, err := repo.FindByID(ctx, "ORD001")
	require.NoError(t, err)
	o.Items[0].Price = 999

	again, err := repo.FindByID(ctx, "ORD001")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Items[0].Price)
}
