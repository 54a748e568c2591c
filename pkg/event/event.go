// Package event provides the two dispatch primitives the stores are built on.
//
// Emitter[T] is a snapshot channel: subscribers receive the current value as
// soon as they subscribe and then every emitted value, in emission order.
//
//	cartEvents := event.NewEmitter[[]models.CartLine](nil)
//	stop := cartEvents.Subscribe(func(items []models.CartLine) { render(items) })
//	defer stop()
//
// Bus is a named-event dispatcher for domain events that other components
// react to (order placed, password reset requested):
//
//	bus.Listen(events.OrderPlaced, func(p any) { ... })
//	bus.Fire(events.OrderPlaced, order)
package event

import (
	"sync"
)

// ─── Emitter ──────────────────────────────────────────────────────────────────

// Emitter delivers full snapshots of type T to subscribers.
//
// Handlers run synchronously on the emitting goroutine, one at a time, so a
// handler must not call back into the component that owns the emitter.
type Emitter[T any] struct {
	mu       sync.Mutex
	handlers map[uint64]func(T)
	order    []uint64
	next     uint64
	current  T

	// deliver serialises dispatch so the initial snapshot handed to a new
	// subscriber can never overtake a concurrent Emit.
	deliver sync.Mutex
}

// NewEmitter returns an Emitter whose current value is initial.
func NewEmitter[T any](initial T) *Emitter[T] {
	return &Emitter[T]{
		handlers: make(map[uint64]func(T)),
		current:  initial,
	}
}

// Subscribe registers fn, calls it with the current value and returns a
// function that removes the subscription.
func (e *Emitter[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	e.deliver.Lock()
	defer e.deliver.Unlock()

	e.mu.Lock()
	id := e.next
	e.next++
	e.handlers[id] = fn
	e.order = append(e.order, id)
	current := e.current
	e.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

// Emit stores v as the current value and hands it to every subscriber in
// subscription order.
func (e *Emitter[T]) Emit(v T) {
	e.deliver.Lock()
	defer e.deliver.Unlock()

	e.mu.Lock()
	e.current = v
	hs := make([]func(T), 0, len(e.order))
	for _, id := range e.order {
		hs = append(hs, e.handlers[id])
	}
	e.mu.Unlock()

	for _, h := range hs {
		h(v)
	}
}

// Current returns the last emitted value.
func (e *Emitter[T]) Current() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Len reports the number of active subscribers.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.order)
}

func (e *Emitter[T]) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.handlers, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// ─── Bus ──────────────────────────────────────────────────────────────────────

// Handler receives an event payload.
type Handler func(payload any)

// Bus dispatches named events to registered listeners.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
// A nil Bus drops the event.
func (b *Bus) Fire(event string, payload any) {
	if b == nil {
		return
	}

	b.mu.RLock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	b.mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}
