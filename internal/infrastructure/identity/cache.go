package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const tokenCachePrefix = "identity:token:"

// CachedVerifier remembers successful verifications in Redis so repeated requests with
// the same token skip the provider round trip. Failures are never cached; a cached entry
// never outlives the token itself.
type CachedVerifier struct {
	Next Verifier
	Rdb  *redis.Client
	TTL  time.Duration
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return tokenCachePrefix + hex.EncodeToString(sum[:])
}

func (v *CachedVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if v.Rdb == nil || v.TTL <= 0 {
		return v.Next.Verify(ctx, token)
	}
	key := cacheKey(token)
	if b, err := v.Rdb.Get(ctx, key).Bytes(); err == nil {
		var c Claims
		if json.Unmarshal(b, &c) == nil && time.Now().Before(c.ExpiresAt) {
			return &c, nil
		}
	} else if err != redis.Nil {
		log.Warn().Err(err).Msg("token cache read failed")
	}

	claims, err := v.Next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	ttl := v.TTL
	if remaining := time.Until(claims.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl > 0 {
		b, _ := json.Marshal(claims)
		if err := v.Rdb.Set(ctx, key, b, ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("token cache write failed")
		}
	}
	return claims, nil
}
