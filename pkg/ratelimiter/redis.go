package ratelimiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a sliding-window limiter shared across API replicas. Each attempt
// is a member of a sorted set scored by its timestamp; members older than the
// window are pruned on every check.
type Redis struct {
	client *redis.Client
	config Config
}

func NewRedis(client *redis.Client, config Config) *Redis {
	return &Redis{client: client, config: config}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-r.config.Window)
	redisKey := "ratelimit:" + key

	pipe := r.client.TxPipeline()

	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10))
	count := pipe.ZCard(ctx, redisKey)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit for %s: %w", key, err)
	}

	if count.Val() >= int64(r.config.Limit) {
		return false, nil
	}

	pipe = r.client.TxPipeline()

	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, redisKey, r.config.Window)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to record rate limit attempt for %s: %w", key, err)
	}

	return true, nil
}
