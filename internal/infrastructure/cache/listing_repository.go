package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/estate/listings/internal/domain/listing"
)

// CachedRepository decorates a listing.Repository with a read-through
// cache of the full FindAll result. Every successful write drops the
// cached set. Cache failures are logged and fall through to the store.
type CachedRepository struct {
	inner  listing.Repository
	store  Store
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRepository wraps inner. key names the cached set and ttl bounds
// how stale a cached set may be when another instance wrote.
func NewCachedRepository(inner listing.Repository, store Store, key string, ttl time.Duration, logger *zap.Logger) *CachedRepository {
	return &CachedRepository{
		inner:  inner,
		store:  store,
		key:    key,
		ttl:    ttl,
		logger: logger,
	}
}

// FindAll serves the cached set when present, otherwise loads and caches it
func (r *CachedRepository) FindAll(ctx context.Context) ([]listing.Listing, error) {
	if raw, ok, err := r.store.Get(ctx, r.key); err != nil {
		r.logger.Warn("Listing cache read failed", zap.String("key", r.key), zap.Error(err))
	} else if ok {
		var cached []listing.Listing
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		r.logger.Warn("Discarding undecodable listing cache entry", zap.String("key", r.key))
	}

	all, err := r.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(all)
	if err != nil {
		r.logger.Warn("Listing cache encode failed", zap.Error(err))
		return all, nil
	}
	if err := r.store.Set(ctx, r.key, raw, r.ttl); err != nil {
		r.logger.Warn("Listing cache write failed", zap.String("key", r.key), zap.Error(err))
	}
	return all, nil
}

// FindByID always reads through to the store
func (r *CachedRepository) FindByID(ctx context.Context, id string) (*listing.Listing, error) {
	return r.inner.FindByID(ctx, id)
}

// Create stores l and invalidates the cached set
func (r *CachedRepository) Create(ctx context.Context, l *listing.Listing) error {
	if err := r.inner.Create(ctx, l); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// UpdateComment updates the store and invalidates the cached set
func (r *CachedRepository) UpdateComment(ctx context.Context, id, comment string) error {
	if err := r.inner.UpdateComment(ctx, id, comment); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Delete removes from the store and invalidates the cached set
func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Ping checks the underlying store
func (r *CachedRepository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

func (r *CachedRepository) invalidate(ctx context.Context) {
	if err := r.store.Delete(ctx, r.key); err != nil {
		r.logger.Warn("Listing cache invalidation failed", zap.String("key", r.key), zap.Error(err))
	}
}

var _ listing.Repository = (*CachedRepository)(nil)
