package server

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	// RatePerSecond is the sustained number of requests allowed per client.
	RatePerSecond float64
	// Burst is the maximum number of requests allowed at once.
	Burst int
	// CleanupInterval is how often idle limiters are dropped.
	CleanupInterval time.Duration
	// MaxAge is how long a limiter is kept after its last use.
	MaxAge time.Duration
}

// Enabled reports whether limiting is switched on.
func (c RateLimitConfig) Enabled() bool {
	return c.RatePerSecond > 0
}

type limiterEntry struct {
	limiter      *rate.Limiter
	lastSeenNano atomic.Int64
}

// RateLimiter hands out one token bucket per client key.
type RateLimiter struct {
	config   RateLimitConfig
	limiters sync.Map // map[string]*limiterEntry
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter and its cleanup goroutine.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.Burst <= 0 {
		config.Burst = max(1, int(config.RatePerSecond*2))
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.MaxAge <= 0 {
		config.MaxAge = 10 * time.Minute
	}

	rl := &RateLimiter{config: config, stopCh: make(chan struct{})}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.limiters.Range(func(key, value any) bool {
				entry := value.(*limiterEntry)
				if now.Sub(time.Unix(0, entry.lastSeenNano.Load())) > rl.config.MaxAge {
					rl.limiters.Delete(key)
				}
				return true
			})
		case <-rl.stopCh:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow consumes a token for key and reports whether one was available.
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now().UnixNano()

	if val, ok := rl.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.lastSeenNano.Store(now)
		return entry.limiter.Allow()
	}

	entry := &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.config.RatePerSecond), rl.config.Burst)}
	entry.lastSeenNano.Store(now)
	actual, _ := rl.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter.Allow()
}
