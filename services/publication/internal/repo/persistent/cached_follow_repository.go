package persistent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"socialnet/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type cachedFollowRepository struct {
	inner       FollowRepository
	redisClient *redis.Client
	ttl         time.Duration
	logger      *logger.Logger
}

// NewCachedFollowRepository fronts inner with a short-lived redis copy of each
// follow set. Without a client or with a non-positive ttl it returns inner.
func NewCachedFollowRepository(inner FollowRepository, redisClient *redis.Client, ttl time.Duration, log *logger.Logger) FollowRepository {
	if redisClient == nil || ttl <= 0 {
		return inner
	}
	return &cachedFollowRepository{
		inner:       inner,
		redisClient: redisClient,
		ttl:         ttl,
		logger:      log,
	}
}

func followCacheKey(userID string) string {
	return fmt.Sprintf("follows:%s", userID)
}

func (r *cachedFollowRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	key := followCacheKey(userID)

	cached, err := r.redisClient.Get(ctx, key).Result()
	if err == nil {
		var ids []string
		if err := json.Unmarshal([]byte(cached), &ids); err == nil {
			return ids, nil
		}
		r.logger.Warn("Discarding malformed follow cache entry %s", key)
	} else if err != redis.Nil {
		r.logger.Warn("Failed to read follow cache %s: %v", key, err)
	}

	ids, err := r.inner.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}

	if data, err := json.Marshal(ids); err == nil {
		if err := r.redisClient.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("Failed to write follow cache %s: %v", key, err)
		}
	}
	return ids, nil
}
