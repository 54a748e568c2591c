package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatchCron(t *testing.T) {
	at := time.Date(2024, 2, 15, 3, 30, 0, 0, time.UTC) // Thursday

	assert.True(t, matchCron("* * * * *", at))
	assert.True(t, matchCron("30 3 * * *", at))
	assert.True(t, matchCron("*/15 1-5 15 2 4", at))
	assert.False(t, matchCron("0 3 * * *", at))
	assert.False(t, matchCron("*/7 * * * *", at))
	assert.False(t, matchCron("* * *", at))
	assert.False(t, matchCron("x * * * *", at))
}

func TestEveryRunsRepeatedly(t *testing.T) {
	s := New()
	s.tick = 10 * time.Millisecond

	var runs atomic.Int32
	s.Every(20 * time.Millisecond).Name("counter").Run(func(context.Context) { runs.Add(1) })
	assert.Equal(t, []string{"counter  [20ms]"}, s.List())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestWithoutOverlappingSkipsBusyTask(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond

	var runs atomic.Int32
	release := make(chan struct{})
	s.Every(time.Millisecond).WithoutOverlapping().Run(func(context.Context) {
		runs.Add(1)
		<-release
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, runs.Load())

	close(release)
	cancel()
	<-done
}

func TestPanickingTaskIsRecovered(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond

	var after atomic.Bool
	s.Every(time.Hour).Run(func(context.Context) { panic("boom") })
	s.Every(time.Hour).Run(func(context.Context) { after.Store(true) })
	assert.Len(t, s.List(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Start(ctx)

	assert.Eventually(t, after.Load, time.Second, 5*time.Millisecond)
}
