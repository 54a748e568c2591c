package controllers

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/middleware"
	"github.com/shashiranjanraj/meatshop/pkg/response"
	"github.com/shashiranjanraj/meatshop/pkg/sse"
)

const (
	defaultTrackPoll = 2 * time.Second
	heartbeatEvery   = 15 * time.Second
)

type OrderController struct {
	orders *services.OrderStore
	poll   time.Duration
}

// NewOrderController builds the controller. poll is how often a tracking
// stream re-reads the order; zero means every two seconds.
func NewOrderController(orders *services.OrderStore, poll time.Duration) *OrderController {
	if poll <= 0 {
		poll = defaultTrackPoll
	}
	return &OrderController{orders: orders, poll: poll}
}

func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	list, err := c.orders.ListForUser(middleware.UserID(r.Context())).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	response.Success(w, list)
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	o, ok := c.owned(w, r)
	if !ok {
		return
	}
	response.Success(w, o)
}

// Track is public: anyone holding an order id can follow its delivery.
func (c *OrderController) Track(w http.ResponseWriter, r *http.Request) {
	res, err := c.orders.Track(param(r, "id")).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, res)
}

// TrackStream pushes the tracking timeline as server-sent "track" events.
// An event is sent on connect and whenever the status changes. The stream
// ends once the order is delivered, cancelled or unknown.
func (c *OrderController) TrackStream(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	ctx := r.Context()

	stream := sse.New(w, r)
	if stream == nil {
		return
	}

	poll := time.NewTicker(c.poll)
	defer poll.Stop()
	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	last := ""
	for {
		res, err := c.orders.Track(id).Await(ctx)
		if err != nil {
			return
		}
		if res.Status != last {
			if err := stream.Send("track", res); err != nil {
				logger.WithCtx(ctx).Warn("track stream closed", "order", id, "error", err)
				return
			}
			last = res.Status
		}
		if trackFinished(res.Status) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			stream.Comment("keepalive")
		case <-poll.C:
		}
	}
}

func trackFinished(status string) bool {
	return status == models.TrackNotFound || models.OrderStatus(status).Terminal()
}

func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	o, ok := c.owned(w, r)
	if !ok {
		return
	}
	cancelled, err := c.orders.Cancel(o.ID).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if cancelled == nil {
		response.Conflict(w, "Order cannot be cancelled")
		return
	}
	response.Message(w, "Order cancelled", cancelled)
}

// owned loads the order in the path and hides orders of other users.
func (c *OrderController) owned(w http.ResponseWriter, r *http.Request) (models.Order, bool) {
	o, err := c.orders.Get(param(r, "id")).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return models.Order{}, false
	}
	if o.UserID != middleware.UserID(r.Context()) {
		fail(w, r, services.ErrOrderNotFound)
		return models.Order{}, false
	}
	return o, true
}
