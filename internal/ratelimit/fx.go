package ratelimit

import (
	"github.com/paperforge/paperforge/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the optional redis locker. Without REDIS_ADDR the locker
// is nil and callers fall back to uncoordinated (still idempotent) runs.
var Module = fx.Module("ratelimit",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) *Locker {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, scan lock disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return NewLocker(client)
}
