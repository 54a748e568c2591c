package logger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (c *capture) write(_ context.Context, docs []any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range docs {
		c.docs = append(c.docs, d.(LogDocument))
	}
	return nil
}

func TestMongoHandlerShipsRecordsOnClose(t *testing.T) {
	c := &capture{}
	h := newMongoHandler(c.write, slog.LevelInfo)
	log := slog.New(h).With("component", "orders")

	log.Debug("below level")
	log.Info("order placed", "order_id", "ORD002", "total", 220, "request_id", "req-1")
	log.WithGroup("payment").Error("gateway failed", "error", errors.New("timeout"))

	h.Close()
	h.Close()

	require.Len(t, c.docs, 2)
	placed := c.docs[0]
	assert.Equal(t, "INFO", placed.Level)
	assert.Equal(t, "orders", placed.Component)
	assert.Equal(t, "req-1", placed.RequestID)
	assert.Equal(t, "ORD002", placed.Attrs["order_id"])
	assert.EqualValues(t, 220, placed.Attrs["total"])

	failed := c.docs[1]
	assert.Equal(t, "ERROR", failed.Level)
	assert.Equal(t, "timeout", failed.Attrs["payment.error"])
}

func TestMultiHandlerRespectsEachLevel(t *testing.T) {
	debug, info := &capture{}, &capture{}
	dh := newMongoHandler(debug.write, slog.LevelDebug)
	ih := newMongoHandler(info.write, slog.LevelInfo)

	log := slog.New(NewMultiHandler(dh, ih))
	log.Debug("cart loaded")
	log.Warn("cart snapshot unreadable")

	dh.Close()
	ih.Close()
	assert.Len(t, debug.docs, 2)
	require.Len(t, info.docs, 1)
	assert.Equal(t, "cart snapshot unreadable", info.docs[0].Msg)
}
