// Copyright (c) 2026 Trailforge. All rights reserved.

package tours

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kasunvp/trailforge/internal/platform/constants"
)

// aggregationTTL bounds staleness of the cached aggregation payloads
// between catalog writes.
const aggregationTTL = 10 * time.Minute

// Cache stores the aggregation results in Redis. Every miss and every
// Redis failure degrades to the database; the cache never surfaces errors
// to callers.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewCache creates the aggregation cache.
func NewCache(client *redis.Client, logger *slog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// GetStats returns the cached per-difficulty stats, if present.
func (cache *Cache) GetStats(ctx context.Context) ([]DifficultyStat, bool) {
	var stats []DifficultyStat
	if !cache.get(ctx, constants.RedisPrefixTourStats, &stats) {
		return nil, false
	}
	return stats, true
}

// SetStats caches the per-difficulty stats.
func (cache *Cache) SetStats(ctx context.Context, stats []DifficultyStat) {
	cache.set(ctx, constants.RedisPrefixTourStats, stats)
}

// GetMonthlyPlan returns the cached plan for a year, if present.
func (cache *Cache) GetMonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, bool) {
	var plan []MonthlyPlanEntry
	if !cache.get(ctx, monthlyPlanKey(year), &plan) {
		return nil, false
	}
	return plan, true
}

// SetMonthlyPlan caches the plan for a year.
func (cache *Cache) SetMonthlyPlan(ctx context.Context, year int, plan []MonthlyPlanEntry) {
	cache.set(ctx, monthlyPlanKey(year), plan)
}

// Invalidate drops every cached aggregation. Called after catalog writes.
func (cache *Cache) Invalidate(ctx context.Context) {
	keys := []string{constants.RedisPrefixTourStats}

	iter := cache.client.Scan(ctx, 0, constants.RedisPrefixMonthlyPlan+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		cache.logger.Warn("cache scan failed", "error", err)
	}

	if err := cache.client.Del(ctx, keys...).Err(); err != nil {
		cache.logger.Warn("cache invalidation failed", "error", err)
	}
}

func (cache *Cache) get(ctx context.Context, key string, target any) bool {
	payload, err := cache.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			cache.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(payload, target); err != nil {
		cache.logger.Warn("cache payload corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (cache *Cache) set(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		cache.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := cache.client.Set(ctx, key, payload, aggregationTTL).Err(); err != nil {
		cache.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func monthlyPlanKey(year int) string {
	return constants.RedisPrefixMonthlyPlan + strconv.Itoa(year)
}
