package jwt

import (
	"context"
	"fmt"
	"time"

	"foodgram-backend/pkg/cache"
)

const revokedKeyPrefix = "auth:revoked:"

// Blacklist records revoked token ids (jti) until the token would have
// expired anyway.
type Blacklist struct {
	cache cache.Cache
}

func NewBlacklist(c cache.Cache) *Blacklist {
	return &Blacklist{cache: c}
}

// Revoke marks claims.ID as revoked. Already expired tokens are skipped.
func (b *Blacklist) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return fmt.Errorf("token has no id")
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	return b.cache.Set(ctx, revokedKeyPrefix+claims.ID, true, ttl)
}

func (b *Blacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return b.cache.Exists(ctx, revokedKeyPrefix+tokenID)
}
