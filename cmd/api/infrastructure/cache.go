package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"crm-service/internal/config"
	redisclient "crm-service/pkg/redis"
)

// NewRedisClient connects to Redis. It returns (nil, nil) when Redis is
// disabled, in which case the client cache and rate limiter are skipped.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("Redis disabled, client cache and rate limiting are off")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(ctx, redisclient.Config{
		Addr:        cfg.Redis.RedisAddr(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  3,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: 2,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
