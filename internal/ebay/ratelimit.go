package ebay

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/donaldgifford/ebay-seller-connect/internal/metrics"
)

// RateLimiter paces calls to one eBay API family and enforces its daily
// application quota. It uses a token bucket for per-second pacing and a
// rolling 24-hour window for the daily quota.
type RateLimiter struct {
	api      string
	limiter  *rate.Limiter
	daily    atomic.Int64
	maxDaily int64
	resetAt  time.Time
	mu       sync.Mutex
	nowFunc  func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a limiter for the named API family ("inventory",
// "trading", "identity") with the given per-second rate, burst size, and
// daily limit.
func NewRateLimiter(
	api string,
	perSecond float64,
	burst int,
	maxDaily int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		api:      api,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxDaily: maxDaily,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(24 * time.Hour)
	return r
}

// Wait blocks until the call is allowed or ctx is done. An exhausted daily
// quota is reported as a rate-limit *Error so callers see the same shape as
// an upstream 429.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.checkDailyReset()

	if n := r.daily.Load(); n >= r.maxDaily {
		metrics.EbayDailyLimitHits.WithLabelValues(r.api).Inc()
		e := newError(KindRateLimit, http.StatusTooManyRequests,
			fmt.Sprintf("daily %s API limit reached (%d/%d)", r.api, n, r.maxDaily))
		e.Op = "waiting for rate limiter"
		return e
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return Classify("waiting for rate limiter", err)
	}

	metrics.EbayAPICallsTotal.WithLabelValues(r.api).Inc()
	metrics.EbayDailyUsage.WithLabelValues(r.api).Set(float64(r.daily.Add(1)))
	return nil
}

// Quota is a point-in-time view of a limiter's daily window.
type Quota struct {
	API        string
	DailyLimit int64
	DailyUsed  int64
	Remaining  int64
	ResetAt    time.Time
}

// Snapshot reports the current window, rolling it over first when it has
// expired so an idle limiter does not report yesterday's usage.
func (r *RateLimiter) Snapshot() Quota {
	r.checkDailyReset()
	used := r.daily.Load()
	return Quota{
		API:        r.api,
		DailyLimit: r.maxDaily,
		DailyUsed:  used,
		Remaining:  max(r.maxDaily-used, 0),
		ResetAt:    r.ResetAt(),
	}
}

// API returns the API family the limiter guards.
func (r *RateLimiter) API() string {
	return r.api
}

// DailyCount returns the current daily call count.
func (r *RateLimiter) DailyCount() int64 {
	return r.daily.Load()
}

// Remaining returns the calls left in the current 24-hour window.
func (r *RateLimiter) Remaining() int64 {
	return max(r.maxDaily-r.daily.Load(), 0)
}

// ResetAt returns when the current window expires.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}

func (r *RateLimiter) checkDailyReset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.daily.Store(0)
		r.resetAt = now.Add(24 * time.Hour)
	}
}
