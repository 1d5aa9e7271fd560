package commands

import (
	"context"
	"time"

	"github.com/farewatch/farewatch/internal/amadeus"
	"github.com/farewatch/farewatch/internal/cache"
	"github.com/farewatch/farewatch/internal/config"
	"github.com/farewatch/farewatch/internal/metrics"
	"github.com/farewatch/farewatch/internal/ratelimit"
	"github.com/farewatch/farewatch/pkg/logger"
)

const (
	metricsNamespace = "farewatch"
	pushJob          = "farewatch"
	pushTimeout      = 10 * time.Second
)

func buildClient(cfg *config.Config, log logger.Logger, reg *metrics.Registry) *amadeus.Client {
	pace := ratelimit.DefaultConfig()
	pace.RequestsPerSecond = cfg.RequestsPerSecond

	clientCfg := amadeus.DefaultConfig()
	clientCfg.BaseURL = amadeus.HostForEnv(cfg.Env)
	clientCfg.ClientID = cfg.ClientID
	clientCfg.ClientSecret = cfg.ClientSecret
	clientCfg.Currency = cfg.Currency
	clientCfg.MaxRetries = cfg.MaxRetries
	clientCfg.RateLimiter = ratelimit.New(pace)

	return amadeus.NewClient(clientCfg, log, reg)
}

// buildCache connects to Redis when enabled. An unreachable Redis only costs
// the cache, so the run goes on without it.
func buildCache(cfg *config.Config, log logger.Logger) cache.Cache {
	if !cfg.CacheEnabled {
		log.Debug("cache disabled")
		return cache.NewNoOpCache()
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host: cfg.RedisHost,
		Port: cfg.RedisPort,
		TTL:  cfg.RedisTTL,
	})
	if err != nil {
		log.Warn("redis unavailable, running without cache", "addr", cfg.RedisAddr(), "error", err)
		return cache.NewNoOpCache()
	}

	log.Info("redis cache enabled", "addr", cfg.RedisAddr(), "ttl", cfg.RedisTTL.String())
	return redisCache
}

func pushMetrics(ctx context.Context, cfg *config.Config, reg *metrics.Registry, log logger.Logger) {
	if cfg.PushgatewayURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	if err := reg.Push(ctx, cfg.PushgatewayURL, pushJob, nil); err != nil {
		log.Warn("failed to push metrics", "url", cfg.PushgatewayURL, "error", err)
	}
}
