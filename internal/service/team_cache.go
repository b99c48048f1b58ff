package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"pharmtrain_backend/internal/training"
	"pharmtrain_backend/pkg/logger"
	"pharmtrain_backend/pkg/monitoring"
)

const teamStatsKeyPrefix = "team_stats:"

// TeamStatsCache stores computed team statistics between writes.
type TeamStatsCache interface {
	Get(ctx context.Context, key string) (*training.TeamStats, bool)
	Set(ctx context.Context, key string, stats *training.TeamStats)
	Invalidate(ctx context.Context)
}

func teamStatsKey(groupID *uint) string {
	if groupID == nil {
		return teamStatsKeyPrefix + "all"
	}
	return fmt.Sprintf("%sgroup:%d", teamStatsKeyPrefix, *groupID)
}

// RedisTeamStatsCache never returns errors. A Redis failure is logged and treated as a miss.
type RedisTeamStatsCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisTeamStatsCache(rdb *redis.Client, ttl time.Duration) *RedisTeamStatsCache {
	return &RedisTeamStatsCache{Redis: rdb, TTL: ttl}
}

func (c *RedisTeamStatsCache) Get(ctx context.Context, key string) (*training.TeamStats, bool) {
	raw, err := c.Redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("Team stats cache read failed", zap.String("key", key), zap.Error(err))
		}
		monitoring.TeamStatsCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	var stats training.TeamStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		monitoring.TeamStatsCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	monitoring.TeamStatsCache.WithLabelValues("hit").Inc()
	return &stats, true
}

func (c *RedisTeamStatsCache) Set(ctx context.Context, key string, stats *training.TeamStats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, key, raw, c.TTL).Err(); err != nil {
		logger.Log.Warn("Team stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisTeamStatsCache) Invalidate(ctx context.Context) {
	iter := c.Redis.Scan(ctx, 0, teamStatsKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("Team stats cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("Team stats cache invalidation failed", zap.Error(err))
	}
}
