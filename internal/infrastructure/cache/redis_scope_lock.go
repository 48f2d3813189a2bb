package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cms/backend/internal/domain/ordering"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "cms:order-lock:"

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisScopeLocker implements ordering.ScopeLocker on Redis so that every
// server instance sees the same holds.
type RedisScopeLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisScopeLocker connects to Redis and verifies the connection.
func NewRedisScopeLocker(opts *redis.Options) (*RedisScopeLocker, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisScopeLockerWithClient(client, ""), nil
}

// NewRedisScopeLockerWithClient creates a locker with an existing Redis client
func NewRedisScopeLockerWithClient(client *redis.Client, keyPrefix string) *RedisScopeLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisScopeLocker{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// TryLock uses SET NX PX with a random token.
func (l *RedisScopeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock scope %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release scope %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}

// Close closes the Redis client
func (l *RedisScopeLocker) Close() error {
	return l.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (l *RedisScopeLocker) GetClient() *redis.Client {
	return l.client
}

var _ ordering.ScopeLocker = (*RedisScopeLocker)(nil)
