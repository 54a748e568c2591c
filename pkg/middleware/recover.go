package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/metrics"
	"github.com/shashiranjanraj/meatshop/pkg/response"
)

// Recovery turns a handler panic into a 500 envelope and counts it per
// route in meatshop_http_panics_total.
//
// Cart websocket and order tracking streams have already sent their
// headers, so for those the connection is only dropped. http.ErrAbortHandler
// is re-raised for net/http to handle silently.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			route := metrics.Route(r)
			metrics.HandlerPanics.WithLabelValues(route).Inc()
			logger.WithCtx(r.Context()).Error("handler panicked",
				"error", fmt.Sprint(rec),
				"route", route,
				"user_id", UserID(r.Context()),
				"stack", string(debug.Stack()),
			)

			if streaming(r) {
				return
			}
			response.ServerError(w)
		}()
		next.ServeHTTP(w, r)
	})
}

func streaming(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") ||
		strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
