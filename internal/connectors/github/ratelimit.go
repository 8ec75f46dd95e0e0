package github

import (
	"context"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"
)

const (
	// hourlyQuota is the authenticated REST quota.
	hourlyQuota = 5000

	// steadyRate spreads requests at about 4300 per hour.
	steadyRate = rate.Limit(1.2)

	// steadyBurst lets a short refresh fetch its first pages without waiting.
	steadyBurst = 5

	// reserve is the remaining quota below which requests wait for the reset.
	reserve = 100
)

// Quota is the rate limit state last reported by the API.
type Quota struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// low reports whether requests should hold off until the reset.
func (q Quota) low(now time.Time) bool {
	return q.Remaining < reserve && now.Before(q.Reset)
}

// RateLimiter throttles API calls.
//
// A token bucket paces requests, and once the quota reported by the API drops
// below the reserve every request waits for the reset.
type RateLimiter struct {
	bucket *rate.Limiter

	mu    sync.Mutex
	quota Quota
}

// NewRateLimiter creates a rate limiter with the default pacing.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithRate(steadyRate, steadyBurst)
}

// NewRateLimiterWithRate creates a rate limiter with a custom token bucket.
func NewRateLimiterWithRate(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, burst),
		quota:  Quota{Limit: hourlyQuota, Remaining: hourlyQuota},
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	q := r.Quota()
	if !q.low(time.Now()) {
		return nil
	}
	timer := time.NewTimer(time.Until(q.Reset))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Observe records the quota go-github parsed from a response.
// Responses without rate headers leave the state unchanged.
func (r *RateLimiter) Observe(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.quota = Quota{
		Limit:     resp.Rate.Limit,
		Remaining: resp.Rate.Remaining,
		Reset:     resp.Rate.Reset.Time,
	}
}

// Quota returns the last observed quota.
func (r *RateLimiter) Quota() Quota {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota
}
