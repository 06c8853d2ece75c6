package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/config"
)

// ConnectRedis opens the cache client. Redis is optional: callers get a nil
// client (and skip caching) when the ping fails, so the API still serves
// without it.
func ConnectRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		return nil
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
	return rdb
}
