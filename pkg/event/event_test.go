package event_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/meatshop/pkg/event"
)

func TestEmitter_SubscribeReceivesCurrentValue(t *testing.T) {
	e := event.NewEmitter(7)

	var got []int
	stop := e.Subscribe(func(v int) { got = append(got, v) })
	defer stop()

	assert.Equal(t, []int{7}, got)
}

func TestEmitter_DeliversInEmissionOrder(t *testing.T) {
	e := event.NewEmitter(0)

	var got []int
	e.Subscribe(func(v int) { got = append(got, v) })

	for i := 1; i <= 5; i++ {
		e.Emit(i)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, got)
	assert.Equal(t, 5, e.Current())
}

func TestEmitter_Unsubscribe(t *testing.T) {
	e := event.NewEmitter("")

	calls := 0
	stop := e.Subscribe(func(string) { calls++ })
	stop()
	stop() // second call is a no-op

	e.Emit("after")

	assert.Equal(t, 1, calls, "only the initial snapshot should arrive")
	assert.Equal(t, 0, e.Len())
}

func TestEmitter_ConcurrentEmitIsSerialised(t *testing.T) {
	e := event.NewEmitter(0)

	var mu sync.Mutex
	inside := 0
	overlap := false
	e.Subscribe(func(int) {
		mu.Lock()
		inside++
		if inside > 1 {
			overlap = true
		}
		mu.Unlock()

		mu.Lock()
		inside--
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			e.Emit(v)
		}(i)
	}
	wg.Wait()

	assert.False(t, overlap, "handlers must never run concurrently")
}

func TestBus_FireCallsListenersInOrder(t *testing.T) {
	bus := event.NewBus()

	var got []string
	bus.Listen("order.placed", func(p any) { got = append(got, "a:"+p.(string)) })
	bus.Listen("order.placed", func(p any) { got = append(got, "b:"+p.(string)) })
	bus.Listen("other", func(any) { got = append(got, "never") })

	bus.Fire("order.placed", "ORD002")

	assert.Equal(t, []string{"a:ORD002", "b:ORD002"}, got)
}

func TestBus_NilAndFlush(t *testing.T) {
	var nilBus *event.Bus
	nilBus.Fire("anything", nil) // must not panic

	bus := event.NewBus()
	called := false
	bus.Listen("x", func(any) { called = true })
	bus.Flush()
	bus.Fire("x", nil)

	assert.False(t, called)
}
