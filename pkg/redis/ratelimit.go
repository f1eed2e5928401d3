package redis

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRateLimitExceeded is returned when the rate limit is exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed   bool
	Remaining int64
	RetryIn   time.Duration
}

// RateLimiter throttles outbound sends per client phone number. Fixed
// window: the first increment in a window sets the expiry, repeats within
// the window count against the limit.
type RateLimiter struct {
	client    *Client
	keyPrefix string
}

// NewRateLimiter creates a new RateLimiter
func NewRateLimiter(client *Client, keyPrefix string) *RateLimiter {
	if keyPrefix == "" {
		keyPrefix = "briar:ratelimit:"
	}
	return &RateLimiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Allow checks if a send is allowed under the rate limit.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error) {
	rateKey := r.keyPrefix + key

	count, err := r.client.Incr(ctx, rateKey)
	if err != nil {
		return nil, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, rateKey, window); err != nil {
			return nil, err
		}
	}

	if count > limit {
		ttl, err := r.client.TTL(ctx, rateKey)
		if err != nil || ttl < 0 {
			ttl = window
		}
		return &RateLimitResult{
			Allowed:   false,
			Remaining: 0,
			RetryIn:   ttl,
		}, nil
	}

	return &RateLimitResult{
		Allowed:   true,
		Remaining: limit - count,
	}, nil
}
