// Package cache provides byte-oriented key/value stores (Redis and
// in-process) and the read-through listing cache built on them.
package cache

import (
	"context"
	"time"
)

// Store is a TTL key/value store. Get reports a miss with ok=false and a
// nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
