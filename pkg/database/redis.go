package database

import (
	"context"
	"time"

	"order-feedback/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis connects and pings Redis.
func InitRedis(cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Info("Redis connected", zap.String("addr", cfg.Address))
	return rdb, nil
}
