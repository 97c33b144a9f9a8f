package rediscache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	"github.com/oksasatya/ebook-storefront/internal/domain/repository"
	"github.com/oksasatya/ebook-storefront/pkg/helpers"
)

func entitlementKey(userID string) string {
	return "entitlements:user:" + userID
}

type cachedEntitlements struct {
	Purchases []string `json:"purchases"`
	SavedAt   string   `json:"saved_at"`
}

// EntitlementCache keeps the last-known purchase list per user in Redis.
type EntitlementCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewEntitlementCache(rdb *redis.Client, ttl time.Duration) *EntitlementCache {
	return &EntitlementCache{rdb: rdb, ttl: ttl}
}

func (c *EntitlementCache) Load(ctx context.Context, userID string) (entity.EntitlementSet, bool, error) {
	var v cachedEntitlements
	found, err := helpers.RedisGetJSON(ctx, c.rdb, entitlementKey(userID), &v)
	if err != nil || !found {
		return entity.NewEntitlementSet(), false, err
	}
	return entity.NewEntitlementSet(v.Purchases...), true, nil
}

func (c *EntitlementCache) Save(ctx context.Context, userID string, set entity.EntitlementSet) error {
	v := cachedEntitlements{
		Purchases: set.IDs(),
		SavedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	return helpers.RedisSetJSON(ctx, c.rdb, entitlementKey(userID), v, c.ttl)
}

func (c *EntitlementCache) Clear(ctx context.Context, userID string) error {
	return helpers.RedisDel(ctx, c.rdb, entitlementKey(userID))
}

var _ repository.EntitlementCache = (*EntitlementCache)(nil)
