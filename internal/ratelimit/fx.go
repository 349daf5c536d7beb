package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallevents/gatekeeper/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("ratelimit",
	fx.Provide(New),
)

// New is nil when redis is not configured; callers treat a nil bucket as
// an open gate.
func New(cfg config.Config, log *zap.Logger) *TokenBucket {
	if cfg.RedisAddr == "" {
		log.Warn("redis not configured, webhook rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return NewTokenBucket(client, cfg.WebhookRateLimit, cfg.WebhookRateBurst)
}
