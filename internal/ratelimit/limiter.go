package ratelimit

import (
	"context"
	"os"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// API represents the different upstream sources we request prices from
type API string

const (
	// APITarifaluz represents the tarifaluzhora.es price page
	APITarifaluz API = "tarifaluz"
	// APIREE represents the Red Eléctrica market data API
	APIREE API = "ree"
)

// Limiter manages rate limits for different APIs
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

var (
	instance *Limiter
	once     sync.Once
)

// GetLimiter returns the singleton rate limiter instance
func GetLimiter() *Limiter {
	once.Do(func() {
		instance = &Limiter{
			limiters: make(map[API]*rate.Limiter),
		}
		instance.initLimiters()
	})
	return instance
}

// initLimiters initializes rate limiters for each API with conservative defaults
func (l *Limiter) initLimiters() {
	// Tests hit local servers only
	if os.Getenv("GO_TESTING") == "1" || isTestMode() {
		l.limiters[APITarifaluz] = rate.NewLimiter(rate.Inf, 1)
		l.limiters[APIREE] = rate.NewLimiter(rate.Inf, 1)
		return
	}

	// The price page is scraped: one request every 5 seconds, burst of 2 so a
	// manual refresh right after a scheduled one is not held back
	l.limiters[APITarifaluz] = rate.NewLimiter(rate.Limit(1.0/5.0), 2)

	// REE publishes no quota; 2 requests per second is well below anything it throttles
	l.limiters[APIREE] = rate.NewLimiter(rate.Limit(2), 1)
}

// isTestMode checks if we're running in test mode
func isTestMode() bool {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return false
}

// Set replaces the limiter for an API. Passing nil removes the limit.
func (l *Limiter) Set(api API, limiter *rate.Limiter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter == nil {
		delete(l.limiters, api)
		return
	}
	l.limiters[api] = limiter
}

// Wait blocks until the rate limiter permits an event for the given API
// It returns an error if the context is canceled before the event can proceed
func (l *Limiter) Wait(ctx context.Context, api API) error {
	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether an event for the given API may happen now
func (l *Limiter) Allow(api API) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}
