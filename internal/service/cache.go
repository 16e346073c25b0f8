package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const estimateKeyPrefix = "nutrition:estimate"

// EstimateCache stores successful nutrition estimates by ingredient name.
type EstimateCache interface {
	Get(ctx context.Context, key string) (*NutritionEstimate, bool)
	Set(ctx context.Context, key string, est NutritionEstimate)
}

func estimateCacheKey(name, category string) string {
	return fmt.Sprintf("%s:%s|%s", estimateKeyPrefix,
		strings.ToLower(strings.TrimSpace(name)),
		strings.ToLower(strings.TrimSpace(category)))
}

// RedisEstimateCache keeps estimates in Redis. Redis failures are cache misses.
type RedisEstimateCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisEstimateCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisEstimateCache {
	return &RedisEstimateCache{
		redis:  client,
		ttl:    ttl,
		logger: logger.Named("estimate_cache"),
	}
}

func (c *RedisEstimateCache) Get(ctx context.Context, key string) (*NutritionEstimate, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Estimate cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var est NutritionEstimate
	if err := json.Unmarshal(data, &est); err != nil {
		c.logger.Warn("Discarding corrupt cached estimate", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &est, true
}

func (c *RedisEstimateCache) Set(ctx context.Context, key string, est NutritionEstimate) {
	data, err := json.Marshal(est)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Estimate cache write failed", zap.String("key", key), zap.Error(err))
	}
}
