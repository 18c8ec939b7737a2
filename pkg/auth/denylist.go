package auth

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token IDs until the token would have expired
// on its own.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const revokedKeyPrefix = "hms:revoked:"

type redisDenylist struct {
	client redis.Cmdable
}

func NewRedisDenylist(client redis.Cmdable) Denylist {
	return &redisDenylist{client: client}
}

func (d *redisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (d *redisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// memoryDenylist is used when no Redis is configured. Revocations are lost
// on restart.
type memoryDenylist struct {
	cache *cache.Cache
}

func NewMemoryDenylist() Denylist {
	return &memoryDenylist{cache: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (d *memoryDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.cache.Set(tokenID, struct{}{}, ttl)
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, found := d.cache.Get(tokenID)
	return found, nil
}
