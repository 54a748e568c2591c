package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/meatshop/app/jobs"
	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
	"github.com/shashiranjanraj/meatshop/app/routes"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/config"
	"github.com/shashiranjanraj/meatshop/pkg/cache"
	"github.com/shashiranjanraj/meatshop/pkg/crypt"
	"github.com/shashiranjanraj/meatshop/pkg/database"
	"github.com/shashiranjanraj/meatshop/pkg/event"
	"github.com/shashiranjanraj/meatshop/pkg/kv"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/mail"
	"github.com/shashiranjanraj/meatshop/pkg/notification"
	"github.com/shashiranjanraj/meatshop/pkg/queue"
	"github.com/shashiranjanraj/meatshop/pkg/storage"
	"github.com/shashiranjanraj/meatshop/pkg/workerpool"
	"github.com/shashiranjanraj/meatshop/pkg/ws"
)

// App is the wired storefront: stores, their backends and the background
// machinery. Build it with Boot and release it with Close.
type App struct {
	Pool  *workerpool.Pool
	KV    kv.Store
	Bus   *event.Bus
	Queue *queue.Manager
	DB    *gorm.DB // nil unless REPO_DRIVER=database
	Redis *redis.Client

	Users  repositories.UserRepository
	Orders repositories.OrderRepository

	Catalog  *services.Catalog
	Cart     *services.CartStore
	Auth     *services.AuthStore
	Store    *services.OrderStore
	Checkout *services.Checkout
	CartHub  *ws.Hub

	log      *slog.Logger
	closeLog func()
}

// Boot wires every component from configuration.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("server: load config: %w", err)
	}
	// The Mongo sink must be attached before any component logger is derived.
	var closeLog func()
	if uri := config.LogMongoURI(); uri != "" {
		var err error
		if closeLog, err = logger.AttachMongo(uri, config.LogMongoDatabase(), config.LogMongoCollection()); err != nil {
			logger.Warn("mongo log sink unavailable", "error", err)
		}
	}

	a := &App{
		Pool:     workerpool.New(config.WorkerPoolSize()),
		Bus:      event.NewBus(),
		log:      logger.Component("server"),
		closeLog: closeLog,
	}

	if needsRedis() {
		rdb, err := cache.Connect(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = rdb
	}

	var err error
	if a.KV, err = a.openKV(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openRepositories(); err != nil {
		a.Close()
		return nil, err
	}
	a.openQueue()

	a.Catalog = services.NewCatalog()
	a.Cart = services.NewCartStore(a.KV)
	a.Auth = services.NewAuthStore(a.Users, a.KV, a.Pool, a.Bus)
	a.Store = services.NewOrderStore(a.Orders, a.Pool, a.Bus)
	a.Checkout = services.NewCheckout(a.Cart, a.Store, a.Auth, a.Bus)

	a.CartHub = ws.NewHub("cart")
	a.Cart.Subscribe(func(items []models.CartLine) { a.CartHub.PublishJSON(services.Summarize(items)) })

	a.log.Info("booted",
		"kv", config.KVDriver(),
		"repositories", config.RepoDriver(),
		"queue", config.QueueDriver(),
		"otp_mode", config.OTPMode(),
	)
	return a, nil
}

// Routes registers the API on the kernel router.
func (a *App) Routes() routes.Deps {
	return routes.Deps{
		Catalog:  a.Catalog,
		Cart:     a.Cart,
		Auth:     a.Auth,
		Orders:   a.Store,
		Checkout: a.Checkout,
		CartHub:  a.CartHub,

		TrackPoll: trackPoll(),
	}
}

// trackPoll reads ORDER_TRACK_POLL; an unset or malformed value falls back
// to the controller default.
func trackPoll() time.Duration {
	d, err := time.ParseDuration(config.Get("ORDER_TRACK_POLL", ""))
	if err != nil {
		return 0
	}
	return d
}

// Close drains the pool and closes connections. It is safe on a partially
// booted App.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Shutdown()
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			a.log.Warn("close database", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			a.log.Warn("close redis", "error", err)
		}
	}
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
}

func needsRedis() bool {
	return config.KVDriver() == "redis" || config.QueueDriver() == "redis"
}

func (a *App) openKV() (kv.Store, error) {
	var store kv.Store
	switch config.KVDriver() {
	case "memory":
		store = kv.NewMemory()
	case "redis":
		store = kv.NewRedis(a.Redis, config.KVPrefix())
	default:
		disk, err := storage.NewManager().Use(config.StorageDefault())
		if err != nil {
			return nil, fmt.Errorf("server: kv disk: %w", err)
		}
		store = kv.NewDisk(disk, "state")
	}

	secret := config.KVEncryptionKey()
	if secret == "" {
		return store, nil
	}
	c, err := crypt.New(secret)
	if err != nil {
		return nil, fmt.Errorf("server: kv encryption: %w", err)
	}
	return kv.NewEncrypted(store, c), nil
}

func (a *App) openRepositories() error {
	if config.RepoDriver() != "database" {
		demo, err := repositories.DemoUser()
		if err != nil {
			return err
		}
		a.Users = repositories.NewMemoryUserRepository(demo)
		a.Orders = repositories.NewMemoryOrderRepository(repositories.DemoOrders()...)
		return nil
	}

	db, err := database.Connect()
	if err != nil {
		return err
	}
	a.DB = db
	a.Users = repositories.NewGormUserRepository(db)
	a.Orders = repositories.NewGormOrderRepository(db)
	return nil
}

func (a *App) openQueue() {
	var driver queue.Driver
	if config.QueueDriver() == "redis" {
		driver = queue.NewRedisDriver(a.Redis, config.KVPrefix())
	} else {
		driver = queue.NewMemoryDriver(1000)
	}
	a.Queue = queue.New(driver)
	if a.DB != nil {
		a.Queue.UseFailedStore(queue.NewGormFailedStore(a.DB))
	}

	jobs.Register(a.Queue, jobs.Deps{
		Notifier: notification.New(mail.FromConfig(),
			notification.WithSlack(config.Get("SLACK_WEBHOOK_URL", ""))),
		Users:         a.Users,
		DeliveryFee:   services.DeliveryFee,
		ResetURL:      config.Get("RESET_PASSWORD_URL", "http://localhost:"+config.AppPort()+"/reset-password"),
		OTPWebhookURL: config.Get("OTP_WEBHOOK_URL", ""),
	})
	jobs.Listen(a.Bus, a.Queue)
}
