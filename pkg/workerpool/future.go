package workerpool

import (
	"context"
	"fmt"
)

// Future is the pending result of a task submitted with Go.
//
// Once started a task always runs to completion; cancelling the context
// passed to Await only stops the caller from waiting.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn on p and returns a Future for its result. It blocks only while
// the pool queue is full. A closed pool resolves the Future with
// ErrPoolClosed; a nil pool runs fn on its own goroutine.
func Go[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	run := func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("workerpool: task panicked: %v", r)
			}
		}()
		f.val, f.err = fn()
	}

	if p == nil {
		go run()
		return f
	}
	if err := p.SubmitWait(run); err != nil {
		f.err = err
		close(f.done)
	}
	return f
}

// Resolved returns a Future that is already complete.
func Resolved[T any](v T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: v, err: err}
	close(f.done)
	return f
}

// Await blocks until the task finishes or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }
