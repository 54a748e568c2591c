package workerpool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/meatshop/pkg/workerpool"
)

func TestFuture_AwaitValue(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	f := workerpool.Go(pool, func() (string, error) { return "ORD002", nil })

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD002", v)
}

func TestFuture_AwaitError(t *testing.T) {
	boom := errors.New("boom")
	f := workerpool.Go(nil, func() (int, error) { return 0, boom })

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFuture_PanicBecomesError(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	f := workerpool.Go(pool, func() (int, error) { panic("bad task") })

	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad task")
}

func TestFuture_AwaitHonoursContextButTaskCompletes(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	release := make(chan struct{})
	f := workerpool.Go(pool, func() (int, error) {
		<-release
		return 42, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFuture_ClosedPool(t *testing.T) {
	pool := workerpool.New(1)
	pool.Shutdown()

	f := workerpool.Go(pool, func() (int, error) { return 1, nil })
	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, workerpool.ErrPoolClosed)
}

func TestResolved(t *testing.T) {
	f := workerpool.Resolved("done", nil)
	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future must already be done")
	}
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}
