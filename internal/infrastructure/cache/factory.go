package cache

import (
	"fmt"
	"io"

	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ScopeLocker is a closable ordering.ScopeLocker.
type ScopeLocker interface {
	ordering.ScopeLocker
	io.Closer
}

// ScopeLockerFactory creates scope lockers based on configuration
type ScopeLockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ScopeLockerFactoryOption is a functional option for configuring the factory
type ScopeLockerFactoryOption func(*ScopeLockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ScopeLockerFactoryOption {
	return func(f *ScopeLockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory locker. Default is false.
func WithInMemoryFallback(allow bool) ScopeLockerFactoryOption {
	return func(f *ScopeLockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewScopeLockerFactory creates a new factory
func NewScopeLockerFactory(cfg config.RedisConfig, opts ...ScopeLockerFactoryOption) *ScopeLockerFactory {
	f := &ScopeLockerFactory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Create returns the locker for backend (config.LockBackendMemory or
// config.LockBackendRedis).
func (f *ScopeLockerFactory) Create(backend string) (ScopeLocker, error) {
	switch backend {
	case config.LockBackendMemory, "":
		f.logger.Info("using in-memory scope locks")
		return NewInMemoryScopeLocker(), nil
	case config.LockBackendRedis:
		locker, err := NewRedisScopeLocker(&redis.Options{
			Addr:     f.redisConfig.Addr(),
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		})
		if err == nil {
			f.logger.Info("using Redis scope locks", zap.String("addr", f.redisConfig.Addr()))
			return locker, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for scope locks but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory scope locks; "+
			"concurrent reorders on different instances will not be serialized",
			zap.Error(err),
		)
		return NewInMemoryScopeLocker(), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", backend)
	}
}
