package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shashiranjanraj/meatshop/app/routes"
	"github.com/shashiranjanraj/meatshop/config"
	"github.com/shashiranjanraj/meatshop/internal/kernel"
	"github.com/shashiranjanraj/meatshop/pkg/router"
	"github.com/shashiranjanraj/meatshop/pkg/schedule"
)

// Handler builds the full HTTP handler for a booted App.
func Handler(a *App) http.Handler {
	return kernel.NewHTTPKernel(func(r *router.Router) {
		routes.RegisterAPI(r, a.Routes())
	}).Handler()
}

// Schedule registers the App's background tasks. The delivery simulation
// only runs when ORDER_AUTO_ADVANCE holds a duration such as "2m".
func Schedule(a *App, s *schedule.Scheduler) error {
	raw := config.Get("ORDER_AUTO_ADVANCE", "")
	if raw == "" {
		return nil
	}
	every, err := time.ParseDuration(raw)
	if err != nil || every <= 0 {
		return fmt.Errorf("server: ORDER_AUTO_ADVANCE %q is not a positive duration", raw)
	}
	s.Every(every).Name("orders:advance").WithoutOverlapping().Run(func(ctx context.Context) {
		if _, err := a.Store.AdvanceActive().Await(ctx); err != nil {
			a.log.Error("auto advance failed", "error", err)
		}
	})
	return nil
}

// Start serves HTTP on APP_PORT and runs the cart hub, the queue workers and
// the scheduler until ctx is done, then shuts everything down gracefully.
func Start(ctx context.Context, a *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := schedule.New()
	if err := Schedule(a, sched); err != nil {
		return err
	}

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(a),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	background := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}
	background(a.CartHub.Run)
	background(sched.Start)
	a.Queue.Start(ctx, queueWorkers())

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("http server starting", "addr", addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
		close(serveErr)
	}()

	<-ctx.Done()
	a.log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", "error", err)
	}

	wg.Wait()
	a.Queue.Wait()
	a.log.Info("bye")

	if err, ok := <-serveErr; ok {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return nil
}

func queueWorkers() int {
	n, err := strconv.Atoi(config.Get("QUEUE_WORKERS", "2"))
	if err != nil || n < 1 {
		return 2
	}
	return n
}
