// Package kernel builds the HTTP handler: the global middleware stack, the
// operational endpoints and the application routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/meatshop/pkg/metrics"
	"github.com/shashiranjanraj/meatshop/pkg/middleware"
	"github.com/shashiranjanraj/meatshop/pkg/reqid"
	"github.com/shashiranjanraj/meatshop/pkg/response"
	"github.com/shashiranjanraj/meatshop/pkg/router"
)

// RouteFunc registers application routes.
type RouteFunc func(r *router.Router)

// NewHTTPKernel returns the router with every RouteFunc applied.
func NewHTTPKernel(routes ...RouteFunc) *router.Router {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics, outermost for accurate total latency
	//  2. Recovery, catches panics before they kill the goroutine
	//  3. Request ID, injected before anything logs
	//  4. Logger, logs request_id from context
	//  5. CORS
	//  6. Rate limiter, rejects abusers early
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	for _, fn := range routes {
		fn(r)
	}
	return r
}
