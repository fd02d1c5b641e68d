package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) (*Scheduler, *quartz.Mock, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	mClock := quartz.NewMock(t)
	s := New(mClock, log.New(io.Discard))
	t.Cleanup(s.Stop)

	return s, mClock, ctx
}

func TestCountdown(t *testing.T) {
	s, mClock, ctx := newTestScheduler(t)

	trap := mClock.Trap().NewTicker("countdown")
	defer trap.Close()

	var mu sync.Mutex
	var ticks []int
	expired := false

	key := Key{TableID: "t1", Phase: "betting"}
	s.Countdown(ctx, key, 3, func(ctx context.Context, remaining int) error {
		mu.Lock()
		defer mu.Unlock()
		ticks = append(ticks, remaining)
		return nil
	}, func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		expired = true
	})
	trap.MustWait(ctx).MustRelease(ctx)

	for i := 0; i < 3; i++ {
		mClock.Advance(time.Second).MustWait(ctx)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return expired
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2, 1, 0}, ticks)
}

func TestCountdownStopsOnTickError(t *testing.T) {
	s, mClock, ctx := newTestScheduler(t)

	trap := mClock.Trap().NewTicker("countdown")
	defer trap.Close()

	var mu sync.Mutex
	tickCount := 0
	expired := false

	key := Key{TableID: "t1", Phase: "betting"}
	s.Countdown(ctx, key, 5, func(ctx context.Context, remaining int) error {
		mu.Lock()
		defer mu.Unlock()
		tickCount++
		if tickCount == 2 {
			return errors.New("state moved on")
		}
		return nil
	}, func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		expired = true
	})
	trap.MustWait(ctx).MustRelease(ctx)

	mClock.Advance(time.Second).MustWait(ctx)
	mClock.Advance(time.Second).MustWait(ctx)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return tickCount == 2
	}, time.Second, 5*time.Millisecond)

	// Give the stopped countdown a moment; it must not expire
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, expired)
}

func TestAfter(t *testing.T) {
	s, mClock, ctx := newTestScheduler(t)

	trap := mClock.Trap().NewTimer("after")
	defer trap.Close()

	var mu sync.Mutex
	fired := false

	key := Key{TableID: "t1", Phase: "payout"}
	s.After(ctx, key, 3*time.Second, func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		fired = true
	})
	trap.MustWait(ctx).MustRelease(ctx)

	mClock.Advance(3 * time.Second).MustWait(ctx)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired
	}, time.Second, 5*time.Millisecond)
}

func TestCancel(t *testing.T) {
	s, mClock, ctx := newTestScheduler(t)

	trap := mClock.Trap().NewTimer("after")
	defer trap.Close()

	var mu sync.Mutex
	fired := false

	key := Key{TableID: "t1", Phase: "payout"}
	s.After(ctx, key, 3*time.Second, func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		fired = true
	})
	trap.MustWait(ctx).MustRelease(ctx)

	s.Cancel(key)
	time.Sleep(20 * time.Millisecond) // let the task goroutine wind down

	mClock.Advance(3 * time.Second).MustWait(ctx)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, fired)
}

func TestCancelTable(t *testing.T) {
	s, mClock, ctx := newTestScheduler(t)

	trap := mClock.Trap().NewTimer("after")
	defer trap.Close()

	var mu sync.Mutex
	fired := map[string]bool{}

	mark := func(name string) func(context.Context) {
		return func(ctx context.Context) {
			mu.Lock()
			defer mu.Unlock()
			fired[name] = true
		}
	}

	s.After(ctx, Key{TableID: "t1", Phase: "betting"}, time.Second, mark("t1-betting"))
	trap.MustWait(ctx).MustRelease(ctx)
	s.After(ctx, Key{TableID: "t1", Phase: "payout"}, time.Second, mark("t1-payout"))
	trap.MustWait(ctx).MustRelease(ctx)
	s.After(ctx, Key{TableID: "t2", Phase: "betting"}, time.Second, mark("t2-betting"))
	trap.MustWait(ctx).MustRelease(ctx)

	s.CancelTable("t1")
	time.Sleep(20 * time.Millisecond)

	mClock.Advance(time.Second).MustWait(ctx)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired["t2-betting"]
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, fired["t1-betting"])
	assert.False(t, fired["t1-payout"])
}

func TestCountdownReplacesExistingKey(t *testing.T) {
	s, mClock, ctx := newTestScheduler(t)

	trap := mClock.Trap().NewTicker("countdown")
	defer trap.Close()

	var mu sync.Mutex
	firstExpired := false
	secondExpired := false

	key := Key{TableID: "t1", Phase: "betting"}
	s.Countdown(ctx, key, 2, nil, func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		firstExpired = true
	})
	trap.MustWait(ctx).MustRelease(ctx)

	s.Countdown(ctx, key, 2, nil, func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		secondExpired = true
	})
	trap.MustWait(ctx).MustRelease(ctx)
	time.Sleep(20 * time.Millisecond) // let the replaced task wind down

	mClock.Advance(time.Second).MustWait(ctx)
	mClock.Advance(time.Second).MustWait(ctx)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return secondExpired
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, firstExpired, "a replaced countdown must never expire")
}
