package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFromClient(rdb, zap.NewNop()), mr
}

func TestTryLock_Exclusive(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	unlock, ok, err := c.TryLock(ctx, "materialize:lock", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("materialize:lock"))

	_, ok, err = c.TryLock(ctx, "materialize:lock", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "锁被持有时不应再次获取")

	unlock()
	assert.False(t, mr.Exists("materialize:lock"))

	unlock2, ok, err := c.TryLock(ctx, "materialize:lock", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "释放后应可再次获取")
	unlock2()
}

func TestTryLock_UnlockDoesNotReleaseForeignLock(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	unlock, ok, err := c.TryLock(ctx, "materialize:lock", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// 锁过期后被另一实例获取
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("materialize:lock", "other-owner"))

	unlock()
	got, err := mr.Get("materialize:lock")
	require.NoError(t, err)
	assert.Equal(t, "other-owner", got)
}

func TestTryLock_Expires(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	_, ok, err := c.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = c.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "过期后应可重新获取")
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := c.CheckRateLimit(ctx, "rate_limit:test", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "第 %d 次请求应放行", i+1)
	}

	allowed, err := c.CheckRateLimit(ctx, "rate_limit:test", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "超过限额应拒绝")

	// 不同 key 互不影响
	allowed, err = c.CheckRateLimit(ctx, "rate_limit:other", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestClient_ConnectionError(t *testing.T) {
	c, mr := newTestClient(t)
	mr.Close()

	_, _, err := c.TryLock(context.Background(), "k", time.Second)
	assert.Error(t, err)
}
