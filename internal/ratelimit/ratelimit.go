package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Config paces outbound calls. The Amadeus self-service tier allows 10
// transactions per second on the test host, one in flight per 100ms.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		Burst:             1,
	}
}

// EndpointLimiter hands out one token bucket per API endpoint.
type EndpointLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	cfg      Config
}

func New(cfg Config) *EndpointLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &EndpointLimiter{
		limiters: make(map[string]*rate.Limiter),
		cfg:      cfg,
	}
}

func (l *EndpointLimiter) limiter(endpoint string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[endpoint]
	if !ok {
		limit := rate.Inf
		if l.cfg.RequestsPerSecond > 0 {
			limit = rate.Limit(l.cfg.RequestsPerSecond)
		}
		lim = rate.NewLimiter(limit, l.cfg.Burst)
		l.limiters[endpoint] = lim
	}
	return lim
}

// Wait blocks until a request to endpoint may be sent. A nil limiter never
// blocks.
func (l *EndpointLimiter) Wait(ctx context.Context, endpoint string) error {
	if l == nil {
		return nil
	}
	return l.limiter(endpoint).Wait(ctx)
}
