package routes_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/meatshop/app/events"
	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
	"github.com/shashiranjanraj/meatshop/app/routes"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/internal/kernel"
	"github.com/shashiranjanraj/meatshop/pkg/event"
	"github.com/shashiranjanraj/meatshop/pkg/kv"
	"github.com/shashiranjanraj/meatshop/pkg/router"
	"github.com/shashiranjanraj/meatshop/pkg/testkit"
	"github.com/shashiranjanraj/meatshop/pkg/workerpool"
	"github.com/shashiranjanraj/meatshop/pkg/ws"
)

type testApp struct {
	handler http.Handler
	bus     *event.Bus
	orders  *services.OrderStore
}

func newApp(t *testing.T) *testApp {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	pool := workerpool.New(4)
	t.Cleanup(func() {
		cancel()
		pool.Shutdown()
	})

	demo, err := repositories.DemoUser()
	require.NoError(t, err)

	bus := event.NewBus()
	store := kv.NewMemory()
	cart := services.NewCartStore(store)
	auth := services.NewAuthStore(repositories.NewMemoryUserRepository(demo), store, pool, bus)
	orders := services.NewOrderStore(repositories.NewMemoryOrderRepository(repositories.DemoOrders()...), pool, bus)

	hub := ws.NewHub("cart")
	go hub.Run(ctx)
	cart.Subscribe(func(items []models.CartLine) { hub.PublishJSON(services.Summarize(items)) })

	deps := routes.Deps{
		Catalog:  services.NewCatalog(),
		Cart:     cart,
		Auth:     auth,
		Orders:   orders,
		Checkout: services.NewCheckout(cart, orders, auth, bus),
		CartHub:  hub,

		TrackPoll: 10 * time.Millisecond,
	}
	h := kernel.NewHTTPKernel(func(r *router.Router) { routes.RegisterAPI(r, deps) }).Handler()
	return &testApp{handler: h, bus: bus, orders: orders}
}

func newHandler(t *testing.T) http.Handler { return newApp(t).handler }

func TestAPIFlows(t *testing.T) {
	testkit.RunDir(t, newHandler, "testdata")
}

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func call(t *testing.T, h http.Handler, method, url, body string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.Equal(t, rec.Code, env.Status)
	return env
}

func TestPasswordResetWithIssuedToken(t *testing.T) {
	app := newApp(t)

	tokens := make(chan string, 1)
	app.bus.Listen(events.PasswordResetRequested, func(p any) {
		tokens <- p.(events.PasswordResetPayload).Token
	})

	env := call(t, app.handler, http.MethodPost, "/api/auth/password/forgot", `{"email":"TEST@example.com"}`)
	require.Equal(t, http.StatusOK, env.Status)

	var token string
	select {
	case token = <-tokens:
	case <-time.After(2 * time.Second):
		t.Fatal("no reset token issued")
	}

	env = call(t, app.handler, http.MethodGet, "/api/auth/password/verify?token="+token, "")
	assert.JSONEq(t, `{"valid":true}`, string(env.Data))

	env = call(t, app.handler, http.MethodPost, "/api/auth/password/reset", `{"token":"`+token+`","password":"abc"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, env.Status)

	env = call(t, app.handler, http.MethodPost, "/api/auth/password/reset", `{"token":"`+token+`","password":"newpass1"}`)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Equal(t, services.MsgResetComplete, env.Message)

	env = call(t, app.handler, http.MethodPost, "/api/auth/login", `{"email":"test@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, env.Status)

	env = call(t, app.handler, http.MethodPost, "/api/auth/login", `{"email":"test@example.com","password":"newpass1"}`)
	assert.Equal(t, http.StatusOK, env.Status)
}

func TestCartStreamReceivesSnapshots(t *testing.T) {
	app := newApp(t)
	srv := httptest.NewServer(app.handler)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/cart/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	next := func() services.Summary {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var s services.Summary
		require.NoError(t, json.Unmarshal(msg, &s))
		return s
	}

	first := next()
	assert.Equal(t, 0, first.ItemCount)

	resp, err := http.Post(srv.URL+"/api/cart/items", "application/json",
		strings.NewReader(`{"productId":"CC001","weight":"1 kg","quantity":2}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := next()
	assert.Equal(t, 2, got.ItemCount)
	assert.Equal(t, 380, got.Total)
}

// readTrackEvents collects "track" events until the server ends the stream.
func readTrackEvents(t *testing.T, sc *bufio.Scanner, stopAfter int) []models.TrackResult {
	t.Helper()
	var out []models.TrackResult
	for sc.Scan() {
		line := sc.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var res models.TrackResult
		require.NoError(t, json.Unmarshal([]byte(data), &res))
		out = append(out, res)
		if stopAfter > 0 && len(out) == stopAfter {
			break
		}
	}
	return out
}

func TestTrackStreamFollowsOrderToDelivery(t *testing.T) {
	app := newApp(t)
	srv := httptest.NewServer(app.handler)
	defer srv.Close()

	ctx := context.Background()
	order, err := app.orders.Place("1", []models.OrderItem{{ProductID: "CC001", Name: "Chicken Curry Cut", Quantity: 1, Price: 180, Weight: "500 g"}}, 220, models.DeliveryAddress{
		FullName: "Test User", PhoneNumber: "1234567890", AddressLine1: "123 Test Street",
		City: "Test City", State: "Test State", Pincode: "123456",
	}, "Cash on Delivery").Await(ctx)
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL + "/api/orders/" + order.ID + "/track/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	first := readTrackEvents(t, sc, 1)
	require.Len(t, first, 1)
	assert.Equal(t, "pending", first[0].Status)
	assert.Len(t, first[0].Updates, 1)

	for _, next := range []models.OrderStatus{models.StatusProcessing, models.StatusShipped, models.StatusDelivered} {
		_, err := app.orders.Advance(order.ID, next).Await(ctx)
		require.NoError(t, err)
	}

	rest := readTrackEvents(t, sc, 0)
	require.NotEmpty(t, rest, "stream must report the delivery before closing")
	last := rest[len(rest)-1]
	assert.Equal(t, "delivered", last.Status)
	assert.Len(t, last.Updates, 4)
}

func TestTrackStreamEndsForFinishedOrders(t *testing.T) {
	app := newApp(t)
	srv := httptest.NewServer(app.handler)
	defer srv.Close()

	for id, want := range map[string]string{"ORD001": "delivered", "ORD999": models.TrackNotFound} {
		resp, err := (&http.Client{Timeout: 5 * time.Second}).Get(srv.URL + "/api/orders/" + id + "/track/stream")
		require.NoError(t, err)

		got := readTrackEvents(t, bufio.NewScanner(resp.Body), 0)
		resp.Body.Close()
		require.Len(t, got, 1, id)
		assert.Equal(t, want, got[0].Status, id)
	}
}
