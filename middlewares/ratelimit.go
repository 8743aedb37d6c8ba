package middlewares

import (
	"context"
	"math"
	"net"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
	"github.com/dmitrymomot/husca/pkg/cache"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	Store   cache.Cache[*rate.Limiter] // Holds one limiter per key
	KeyFunc func(c internal.Context) string
	Message string
	Rate    rate.Limit    // Tokens per second
	Burst   int           // Bucket size
	IdleTTL time.Duration // Limiters unused for this long are dropped
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimit sets how many requests are allowed per interval.
// The bucket holds n tokens and refills evenly over the interval.
func WithRateLimit(n int, per time.Duration) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if n > 0 && per > 0 {
			cfg.Rate = rate.Every(per / time.Duration(n))
			cfg.Burst = n
		}
	}
}

// WithRateLimitBurst overrides the bucket size.
func WithRateLimitBurst(burst int) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if burst > 0 {
			cfg.Burst = burst
		}
	}
}

// WithRateLimitKey sets the function that picks the bucket for a request.
// Returning an empty key skips limiting for that request.
func WithRateLimitKey(fn func(c internal.Context) string) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		cfg.KeyFunc = fn
	}
}

// WithRateLimitStore sets the limiter store.
func WithRateLimitStore(store cache.Cache[*rate.Limiter]) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		cfg.Store = store
	}
}

// WithRateLimitIdleTTL sets how long an unused limiter is kept.
func WithRateLimitIdleTTL(d time.Duration) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if d > 0 {
			cfg.IdleTTL = d
		}
	}
}

// WithRateLimitMessage sets the message of the 429 error.
func WithRateLimitMessage(msg string) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		cfg.Message = msg
	}
}

// RateLimit returns a slot applying a token bucket per client.
// Clients are keyed by IP unless WithRateLimitKey says otherwise.
// Rejected requests get 429 with Retry-After; every limited request
// carries X-RateLimit-Limit and X-RateLimit-Remaining.
//
// Defaults: 100 requests per minute, limiters kept in memory for 10 minutes.
func RateLimit(opts ...RateLimitOption) *slot.Slot {
	cfg := &RateLimitConfig{
		KeyFunc: ClientIP,
		Message: "rate limit exceeded",
		Rate:    rate.Every(time.Minute / 100),
		Burst:   100,
		IdleTTL: 10 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Store == nil {
		cfg.Store = cache.NewMemory[*rate.Limiter](
			cache.WithDefaultTTL(cfg.IdleTTL),
			cache.WithCleanupInterval(cfg.IdleTTL),
		)
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		key := cfg.KeyFunc(c)
		if key == "" {
			return next()
		}

		limiter, err := cache.GetOrSet(c, cfg.Store, key, func(context.Context) (*rate.Limiter, time.Duration, error) {
			return rate.NewLimiter(cfg.Rate, cfg.Burst), cfg.IdleTTL, nil
		})
		if err != nil {
			return nil, err
		}
		// Sliding expiry: an active client keeps its bucket.
		_ = cfg.Store.Set(c, key, limiter, cfg.IdleTTL)

		now := time.Now()
		r := limiter.ReserveN(now, 1)
		delay := r.DelayFrom(now)

		c.SetHeader("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))

		if !r.OK() || delay > 0 {
			r.CancelAt(now)
			retry := int(math.Ceil(delay.Seconds()))
			if !r.OK() || retry < 1 {
				retry = 1
			}
			c.SetHeader("X-RateLimit-Remaining", "0")
			c.SetHeader("Retry-After", strconv.Itoa(retry))
			return nil, internal.ErrTooManyRequests(cfg.Message)
		}

		remaining := max(int(limiter.TokensAt(now)), 0)
		c.SetHeader("X-RateLimit-Remaining", strconv.Itoa(remaining))

		return next()
	})
}

// ClientIP returns the client address of the request without the port.
// Put RealIP in front of it when running behind a proxy.
func ClientIP(c internal.Context) string {
	addr := c.Request().RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
