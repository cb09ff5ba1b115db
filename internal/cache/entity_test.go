package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestEntityEviction(t *testing.T) {
	c := NewEntity[string](2)

	c.Put("k1", "v1")
	c.Put("k2", "v2")
	c.Put("k3", "v3")

	_, ok := c.Get("k1")
	assert.False(t, ok, "k1 should have been evicted")

	v, ok := c.Get("k2")
	require.True(t, ok)
	assert.Equal(t, "v2", v)

	v, ok = c.Get("k3")
	require.True(t, ok)
	assert.Equal(t, "v3", v)

	assert.Equal(t, 1, c.Stats().Evictions)
}

func TestEntityGetRefreshesRecency(t *testing.T) {
	c := NewEntity[string](2)

	c.Put("k1", "v1")
	c.Put("k2", "v2")
	_, _ = c.Get("k1") // k2 is now least recently used
	c.Put("k3", "v3")

	_, ok := c.Get("k1")
	assert.True(t, ok)
	_, ok = c.Get("k2")
	assert.False(t, ok)
}

func TestEntityLastWriteWins(t *testing.T) {
	clock := newFakeClock()
	c := NewEntity[string](2, WithClock(clock.Now))

	c.Put("k", "old")
	clock.Advance(time.Minute)
	c.Put("k", "new")

	assert.Equal(t, 1, c.Len())
	entry, ok := c.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, "new", entry.Value)
	assert.Equal(t, clock.Now(), entry.FetchedAt)

	// Replacing does not consume a history slot
	c.Put("other", "x")
	_, ok = c.Get("k")
	assert.True(t, ok)
}

func TestEntityInvalidate(t *testing.T) {
	c := NewEntity[int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Invalidate("a")
	c.Invalidate("missing")

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, c.Keys())

	c.Put("c", 3)
	_, ok = c.Get("b")
	assert.True(t, ok, "invalidate should free the history slot")
}

func TestEntityMaxAge(t *testing.T) {
	clock := newFakeClock()
	c := NewEntity[string](4, WithMaxAge(time.Minute), WithClock(clock.Now))

	c.Put("k", "v")
	clock.Advance(30 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry older than max age should miss")

	// Stale entries stay until replaced
	_, ok = c.Lookup("k")
	assert.True(t, ok)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Stale)
}

func TestEntityClear(t *testing.T) {
	c := NewEntity[string](3)
	c.Put("a", "1")
	c.Put("b", "2")

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())
}

func TestEntityConcurrentAccess(t *testing.T) {
	c := NewEntity[int](8)
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (w+i)%16)
				c.Put(key, i)
				if v, ok := c.Get(key); ok {
					assert.GreaterOrEqual(t, v, 0)
				}
				if i%10 == 0 {
					c.Invalidate(key)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 8)
	assert.Equal(t, c.Len(), len(c.Keys()))
}
