package http_test

import (
	"errors"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	khttp "github.com/shashiranjanraj/meatshop/pkg/http"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"queued":true}`))
	}))
	defer srv.Close()

	resp, err := khttp.Post(srv.URL).Header("X-Api-Key", "k").Body(map[string]string{"to": "9876543210"}).Send()
	require.NoError(t, err)
	require.NoError(t, resp.Throw())

	var out struct{ Queued bool }
	require.NoError(t, resp.JSON(&out))
	assert.True(t, out.Queued)
}

func TestErrorStatusIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		calls.Add(1)
		gohttp.Error(w, "down", gohttp.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := khttp.Get(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.ErrorContains(t, resp.Throw(), "HTTP 502")
	assert.Equal(t, int32(1), calls.Load())
}

type flaky struct {
	failures int
	calls    int
}

func (f *flaky) RoundTrip(r *gohttp.Request) (*gohttp.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return httptest.NewRecorder().Result(), nil
}

func TestTransportErrorsAreRetried(t *testing.T) {
	rt := &flaky{failures: 2}
	resp, err := khttp.Get("http://hooks.test/").
		Client(&gohttp.Client{Transport: rt}).
		Retry(3, time.Millisecond).
		Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, 3, rt.calls)

	rt = &flaky{failures: 5}
	_, err = khttp.Get("http://hooks.test/").
		Client(&gohttp.Client{Transport: rt}).
		Retry(2, time.Millisecond).
		Send()
	assert.ErrorContains(t, err, "all 2 attempts failed")
	assert.Equal(t, 2, rt.calls)
}
