package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore(10).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))

	now = now.Add(59 * time.Second)
	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStoreBoundedSize(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore(3).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Set(ctx, fmt.Sprintf("k%d", i), "v", time.Duration(i+1)*time.Minute))
	}
	// Full: k0 expires soonest and gets evicted for the newcomer.
	require.NoError(t, s.Set(ctx, "k3", "v", time.Hour))

	_, ok, _ := s.Get(ctx, "k0")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "k3")
	assert.True(t, ok)
	assert.Len(t, s.entries, 3)
}

func TestMemoryStoreIncrWindow(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore(10).WithClock(func() time.Time { return now })
	ctx := context.Background()

	n, err := s.Incr(ctx, "c", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, _ = s.Incr(ctx, "c", time.Minute)
	assert.Equal(t, int64(2), n)

	now = now.Add(2 * time.Minute)
	n, _ = s.Incr(ctx, "c", time.Minute)
	assert.Equal(t, int64(1), n, "window restarts after expiry")
}

func TestLimiterFixedWindow(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore(10).WithClock(func() time.Time { return now })
	l := NewLimiter(s, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "1.2.3.4"), "request %d should pass", i)
	}
	assert.False(t, l.Allow(ctx, "1.2.3.4"))
	assert.True(t, l.Allow(ctx, "5.6.7.8"), "other clients unaffected")

	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow(ctx, "1.2.3.4"), "fresh window")
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStoreFromClient(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	mr.FastForward(2 * time.Minute)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisStoreIncr(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	n, err := s.Incr(ctx, "c", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, _ = s.Incr(ctx, "c", time.Minute)
	assert.Equal(t, int64(2), n)

	mr.FastForward(2 * time.Minute)
	n, _ = s.Incr(ctx, "c", time.Minute)
	assert.Equal(t, int64(1), n)
}
