package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// UnauthenticatedLimit is the hourly quota without a token.
	UnauthenticatedLimit = 60

	// AuthenticatedLimit is the hourly quota with a token.
	AuthenticatedLimit = 5000

	// ProactiveRate is the default token bucket rate in requests per second.
	ProactiveRate = 1.2

	// MinBuffer is the remaining-request floor below which Wait blocks
	// until the quota resets.
	MinBuffer = 5

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"
)

// RateLimiter combines a token bucket with the quota GitHub reports in
// response headers.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetTime time.Time
	bucket    *rate.Limiter
	minBuffer int
}

// NewRateLimiter creates a rate limiter assuming a full quota of limit
// requests, throttled to perSecond requests per second.
func NewRateLimiter(limit int, perSecond float64) *RateLimiter {
	return &RateLimiter{
		remaining: limit,
		limit:     limit,
		bucket:    rate.NewLimiter(rate.Limit(perSecond), 1),
		minBuffer: MinBuffer,
	}
}

// Wait blocks until it is safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	r.mu.Unlock()

	if remaining < r.minBuffer && time.Now().Before(resetTime) {
		timer := time.NewTimer(time.Until(resetTime))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return nil
}

// UpdateFromResponse updates the quota from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v := resp.Header.Get(HeaderRateRemaining); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.remaining = n
		}
	}
	if v := resp.Header.Get(HeaderRateLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.limit = n
		}
	}
	if v := resp.Header.Get(HeaderRateReset); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			r.resetTime = time.Unix(n, 0)
		}
	}
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
