package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/estate/listings/internal/infrastructure/config"
)

// Factory builds a Store from configuration
type Factory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the store selected by cache.driver. For "redis" it
// falls back to memory when Redis is down and fallback is allowed.
func (f *Factory) CreateStore() (Store, error) {
	switch f.cfg.Cache.Driver {
	case config.CacheMemory:
		f.logger.Info("Using in-memory listing cache")
		return NewInMemoryStore(time.Minute), nil
	case config.CacheRedis:
		store, err := NewRedisStore(f.cfg.Redis)
		if err == nil {
			f.logger.Info("Using Redis listing cache", zap.String("addr", f.cfg.Redis.Addr()))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for listing cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory listing cache. "+
			"Instances will not share cached listings.",
			zap.Error(err),
		)
		return NewInMemoryStore(time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", f.cfg.Cache.Driver)
	}
}
