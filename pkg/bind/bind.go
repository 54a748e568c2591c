// Package bind decodes a storefront request body into a form struct and
// validates it.
//
//	var form services.CheckoutForm
//	errs, err := bind.JSON(r, &form)
//	switch {
//	case errors.Is(err, bind.ErrTooLarge): // 413
//	case err != nil:                       // 400, err.Error() is client-safe
//	case errs != nil:                      // 422 with the field map
//	}
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/meatshop/config"
	"github.com/shashiranjanraj/meatshop/pkg/validate"
)

const defaultMaxBody = 64 << 10

var (
	ErrEmptyBody = errors.New("request body is empty")
	ErrTooLarge  = errors.New("request body is too large")
	ErrMalformed = errors.New("request body is not valid JSON")
)

// maxBodyBytes is MAX_BODY_BYTES, 64 KB unless configured.
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", ""), 10, 64)
	if err != nil || n <= 0 {
		return defaultMaxBody
	}
	return n
}

// JSON decodes a single JSON value from r.Body into dest and validates it.
// A decode failure is returned as err and wraps one of ErrEmptyBody,
// ErrTooLarge or ErrMalformed; validation failures come back as errs.
func JSON(r *http.Request, dest any) (errs map[string]string, err error) {
	limit := maxBodyBytes()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limit))

	if err := dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil, ErrEmptyBody
		case errors.As(err, &maxErr):
			return nil, fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, maxErr.Limit)
		default:
			return nil, ErrMalformed
		}
	}
	if dec.More() {
		return nil, ErrMalformed
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
