package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(clock *fakeClock) *Cache {
	return New(Config{}, WithClock(clock.Now))
}

func TestGetWithinTTL(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)

	c.Set("annotations:a.go", []string{"x"})
	clock.Advance(DefaultTTL - time.Millisecond)

	first, ok := c.Get("annotations:a.go")
	require.True(t, ok)
	second, ok := c.Get("annotations:a.go")
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestGetExpiresLazily(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)

	c.Set("k", 1)
	clock.Advance(DefaultTTL)

	_, ok := c.Get("k")
	assert.False(t, ok, "absent once now - storedAt >= ttl")
	assert.Equal(t, 1, c.Len(), "still physically present")

	v, ok := c.Stale("k")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestInvalidateAll(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)

	c.Set("a", 1)
	c.Set("b", 2)
	c.InvalidateAll()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)

	_, ok = c.Stale("a")
	assert.False(t, ok, "invalidated values are not served as stale")
	assert.Equal(t, 0, c.Len())

	c.Set("a", 3)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestSweep(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)

	c.Set("old", 1)
	clock.Advance(DefaultStaleAfter - time.Minute)
	c.Set("new", 2)
	clock.Advance(time.Minute)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Stale("old")
	assert.False(t, ok)
	_, ok = c.Stale("new")
	assert.True(t, ok)
}

func TestStats(t *testing.T) {
	c := newTestCache(newFakeClock())
	c.Set("a", 1)
	c.Get("a")
	c.Get("b")

	assert.Equal(t, Stats{Hits: 1, Misses: 1, Entries: 1}, c.Stats())
}

func TestConfigDefaults(t *testing.T) {
	c := New(Config{TTL: time.Second, Cooldown: -1})
	assert.Equal(t, time.Second, c.ttl)
	assert.Equal(t, DefaultCooldown, c.cooldown)
	assert.Equal(t, DefaultStaleAfter, c.staleAfter)
}

func TestFetchComputesOnceWhileFresh(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := Fetch(ctx, c, "snapshot:go", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = Fetch(ctx, c, "snapshot:go", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)
}

func TestFetchCooldownServesStale(t *testing.T) {
	clock := newFakeClock()
	c := New(Config{TTL: time.Second}, WithClock(clock.Now))
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, err := Fetch(ctx, c, "snapshot:go", compute)
	require.NoError(t, err)

	// expired by TTL inside the cooldown: stale value, no rescan
	clock.Advance(2 * time.Second)
	v, err := Fetch(ctx, c, "snapshot:go", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)

	// cooldown over: rescan
	clock.Advance(DefaultCooldown)
	v, err = Fetch(ctx, c, "snapshot:go", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)
}

func TestFetchInvalidatedInsideCooldownRecomputes(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, err := Fetch(ctx, c, "snapshot:go", compute)
	require.NoError(t, err)

	clock.Advance(time.Second)
	require.True(t, c.InCooldown("snapshot:go"))
	c.InvalidateAll()

	v, err := Fetch(ctx, c, "snapshot:go", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)
}

func TestFetchCooldownWithoutValueComputes(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	c.MarkScanned("k")
	require.True(t, c.InCooldown("k"))

	v, err := Fetch(context.Background(), c, "k", func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestFetchError(t *testing.T) {
	c := newTestCache(newFakeClock())
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestFetchCancelledResultNotStored(t *testing.T) {
	c := newTestCache(newFakeClock())
	ctx, cancel := context.WithCancel(context.Background())

	v, err := Fetch(ctx, c, "k", func(context.Context) ([]string, error) {
		cancel()
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 0, c.Len())
}

func TestFetchTypeMismatchRecomputes(t *testing.T) {
	c := newTestCache(newFakeClock())
	c.Set("k", "not an int")

	v, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestRunSweeperStops(t *testing.T) {
	c := New(Config{StaleAfter: time.Millisecond})
	c.Set("k", 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(Config{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("k", i)
				c.Get("k")
				if j%10 == 0 {
					c.InvalidateAll()
				}
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
