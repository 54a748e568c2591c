// Package controllers adapts the storefront services to the JSON API.
package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/bind"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/middleware"
	"github.com/shashiranjanraj/meatshop/pkg/response"
)

// fail maps a service error onto the envelope.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(w, verr.Fields)

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrNotLoggedIn),
		errors.Is(err, services.ErrInvalidResetToken):
		response.Error(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, services.ErrInvalidOTP):
		response.BadRequest(w, err.Error())

	case errors.Is(err, services.ErrPhoneRequired):
		response.ValidationError(w, map[string]string{"phone": err.Error()})

	case errors.Is(err, services.ErrEmailTaken):
		response.Conflict(w, err.Error())

	case errors.Is(err, services.ErrEmailNotFound):
		response.Error(w, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrComboNotFound):
		response.Error(w, http.StatusNotFound, "Product not found")

	case errors.Is(err, services.ErrVariantNotFound):
		response.ValidationError(w, map[string]string{"weight": "The selected weight is not available."})

	case errors.Is(err, services.ErrOrderNotFound):
		response.Error(w, http.StatusNotFound, "Order not found")

	case errors.Is(err, services.ErrEmptyCart):
		response.BadRequest(w, "Your cart is empty")

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away; the operation itself still completes.
		logger.WithCtx(r.Context()).Warn("request abandoned", "error", err)

	default:
		logger.WithCtx(r.Context()).Error("request failed", "error", err)
		response.ServerError(w)
	}
}

// decode binds and validates the body. It reports false after writing the
// error response.
func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	errs, err := bind.JSON(r, dest)
	if errors.Is(err, bind.ErrTooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
		return false
	}
	if err != nil {
		response.BadRequest(w, err.Error())
		return false
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

// param returns a decoded path parameter. Cart line ids may contain
// spaces and slashes ("GT001-1/2 kg").
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// sessionUser returns the signed-in user when it matches the bearer token
// that Authenticate verified.
func sessionUser(auth *services.AuthStore, r *http.Request) (*models.User, error) {
	u := auth.CurrentUser()
	if u == nil || u.ID != middleware.UserID(r.Context()) {
		return nil, services.ErrNotLoggedIn
	}
	return u, nil
}
