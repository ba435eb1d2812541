package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/estate/listings/internal/infrastructure/cache"
)

const blacklistPrefix = "token:blacklist:jti:"

// TokenBlacklist revokes tokens before they expire (logout). Entries live
// in the shared cache store so every instance sees a revocation.
type TokenBlacklist struct {
	store cache.Store
}

// NewTokenBlacklist creates a blacklist on store
func NewTokenBlacklist(store cache.Store) *TokenBlacklist {
	return &TokenBlacklist{store: store}
}

// Revoke blacklists jti for ttl, normally the token's remaining lifetime.
// A non-positive ttl is a no-op since the token is already expired.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.store.Set(ctx, blacklistPrefix+jti, []byte("1"), ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, ok, err := b.store.Get(ctx, blacklistPrefix+jti)
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return ok, nil
}
