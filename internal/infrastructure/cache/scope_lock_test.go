package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newMiniredisLocker(t *testing.T) (*RedisScopeLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisScopeLockerWithClient(client, ""), mr
}

// lockerContract runs the shared behaviour against any implementation.
func lockerContract(t *testing.T, locker ordering.ScopeLocker, expire func(time.Duration)) {
	ctx := context.Background()

	t.Run("second holder is refused", func(t *testing.T) {
		release, ok, err := locker.TryLock(ctx, "friend_links", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = locker.TryLock(ctx, "friend_links", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, release(ctx))

		release, ok, err = locker.TryLock(ctx, "friend_links", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, release(ctx))
	})

	t.Run("scopes are independent", func(t *testing.T) {
		r1, ok, err := locker.TryLock(ctx, "product_pages:a", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		r2, ok, err := locker.TryLock(ctx, "product_pages:b", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, r1(ctx))
		require.NoError(t, r2(ctx))
	})

	t.Run("expired hold can be taken and stale release is harmless", func(t *testing.T) {
		stale, ok, err := locker.TryLock(ctx, "corporate_honors", 50*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		expire(100 * time.Millisecond)

		fresh, ok, err := locker.TryLock(ctx, "corporate_honors", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, stale(ctx))

		_, ok, err = locker.TryLock(ctx, "corporate_honors", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "stale release must not drop the fresh hold")
		require.NoError(t, fresh(ctx))
	})
}

func TestInMemoryScopeLocker(t *testing.T) {
	locker := NewInMemoryScopeLocker()
	defer locker.Close()

	lockerContract(t, locker, func(d time.Duration) { time.Sleep(d) })
}

func TestInMemoryScopeLocker_Cleanup(t *testing.T) {
	locker := NewInMemoryScopeLocker()
	defer locker.Close()

	for i := 0; i < 3; i++ {
		_, ok, err := locker.TryLock(context.Background(), "scope-"+strconv.Itoa(i), time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, 3, locker.Size())

	time.Sleep(5 * time.Millisecond)
	locker.cleanup()
	assert.Equal(t, 0, locker.Size())
}

func TestInMemoryScopeLocker_CloseIdempotent(t *testing.T) {
	locker := NewInMemoryScopeLocker()
	assert.NoError(t, locker.Close())
	assert.NoError(t, locker.Close())
}

func TestRedisScopeLocker(t *testing.T) {
	locker, mr := newMiniredisLocker(t)

	lockerContract(t, locker, mr.FastForward)
}

func TestRedisScopeLocker_KeyAndTTL(t *testing.T) {
	locker, mr := newMiniredisLocker(t)

	release, ok, err := locker.TryLock(context.Background(), "friend_links", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, mr.Exists(defaultLockPrefix+"friend_links"))
	assert.Equal(t, 10*time.Second, mr.TTL(defaultLockPrefix+"friend_links"))

	require.NoError(t, release(context.Background()))
	assert.False(t, mr.Exists(defaultLockPrefix+"friend_links"))
}

func TestRedisScopeLocker_ServerDown(t *testing.T) {
	locker, mr := newMiniredisLocker(t)
	mr.Close()

	_, ok, err := locker.TryLock(context.Background(), "friend_links", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestScopeLockerFactory(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		locker, err := NewScopeLockerFactory(config.RedisConfig{}).Create(config.LockBackendMemory)
		require.NoError(t, err)
		defer locker.Close()
		assert.IsType(t, &InMemoryScopeLocker{}, locker)
	})

	t.Run("redis backend", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)

		locker, err := NewScopeLockerFactory(config.RedisConfig{Host: mr.Host(), Port: port}).Create(config.LockBackendRedis)
		require.NoError(t, err)
		defer locker.Close()
		assert.IsType(t, &RedisScopeLocker{}, locker)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		_, err := NewScopeLockerFactory(config.RedisConfig{Host: "127.0.0.1", Port: 1}).Create(config.LockBackendRedis)
		assert.Error(t, err)
	})

	t.Run("unreachable redis with fallback warns", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		locker, err := NewScopeLockerFactory(config.RedisConfig{Host: "127.0.0.1", Port: 1},
			WithLogger(zap.New(core)), WithInMemoryFallback(true)).Create(config.LockBackendRedis)
		require.NoError(t, err)
		defer locker.Close()
		assert.IsType(t, &InMemoryScopeLocker{}, locker)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewScopeLockerFactory(config.RedisConfig{}).Create("etcd")
		assert.Error(t, err)
	})
}
