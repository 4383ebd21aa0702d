package matching

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logging"
)

const poolCacheKeyPrefix = "matching:pool:"

// PoolCache stores candidate pools keyed by query shape.
type PoolCache interface {
	GetPool(ctx context.Context, key string) ([]*UserProfile, bool, error)
	SetPool(ctx context.Context, key string, pool []*UserProfile, ttl time.Duration) error
}

type redisPoolCache struct {
	client *redis.Client
}

func NewRedisPoolCache(client *redis.Client) PoolCache {
	return &redisPoolCache{client: client}
}

func (c *redisPoolCache) GetPool(ctx context.Context, key string) ([]*UserProfile, bool, error) {
	raw, err := c.client.Get(ctx, poolCacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var pool []*UserProfile
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, false, err
	}
	return pool, true, nil
}

func (c *redisPoolCache) SetPool(ctx context.Context, key string, pool []*UserProfile, ttl time.Duration) error {
	raw, err := json.Marshal(pool)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, poolCacheKeyPrefix+key, raw, ttl).Err()
}

// cachedProfileStore serves FindAll from the cache when it can. The cached
// pool is requester-independent; the requester is removed after the read.
// Cache faults are logged and the store is used directly.
type cachedProfileStore struct {
	ProfileStore
	cache PoolCache
	ttl   time.Duration
}

func NewCachedProfileStore(store ProfileStore, cache PoolCache, ttl time.Duration) ProfileStore {
	if cache == nil || ttl <= 0 {
		return store
	}
	return &cachedProfileStore{ProfileStore: store, cache: cache, ttl: ttl}
}

func (s *cachedProfileStore) FindAll(ctx context.Context, q PoolQuery) ([]*UserProfile, error) {
	shared := PoolQuery{Box: q.Box}
	key := shared.cacheKey()

	pool, hit, err := s.cache.GetPool(ctx, key)
	switch {
	case err != nil:
		poolCacheRequests.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Pool cache read failed")
	case hit:
		poolCacheRequests.WithLabelValues("hit").Inc()
		return withoutUser(pool, q.ExcludeUserID), nil
	default:
		poolCacheRequests.WithLabelValues("miss").Inc()
	}

	pool, err = s.ProfileStore.FindAll(ctx, shared)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPool(ctx, key, pool, s.ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Pool cache write failed")
	}
	return withoutUser(pool, q.ExcludeUserID), nil
}

func withoutUser(pool []*UserProfile, userID int64) []*UserProfile {
	out := make([]*UserProfile, 0, len(pool))
	for _, p := range pool {
		if p != nil && p.UserID == userID && userID != 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}
