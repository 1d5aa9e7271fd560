package amadeus

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const DefaultMaxBackoff = 60 * time.Second

// retryDelay returns how long to wait before retry number attempt (from 1).
// A Retry-After hint, in seconds or as an HTTP date, wins over the
// exponential schedule of 2^attempt seconds. Both are capped at maxDelay.
func retryDelay(attempt int, retryAfter string, maxDelay time.Duration, now time.Time) time.Duration {
	if hint, ok := parseRetryAfter(retryAfter, now); ok {
		return clamp(hint, maxDelay)
	}

	if attempt < 1 {
		attempt = 1
	}
	if attempt >= 30 {
		return maxDelay
	}
	return clamp(time.Duration(1<<uint(attempt))*time.Second, maxDelay)
}

func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		return t.Sub(now), true
	}
	return 0, false
}

func clamp(d, maxDelay time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if maxDelay > 0 && d > maxDelay {
		return maxDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
