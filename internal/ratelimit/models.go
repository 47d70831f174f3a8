package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is the number of seconds to wait when not allowed.
	RetryAfter int
}

// BucketStore counts requests per key over a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// ExceededResponse is the 429 response body.
type ExceededResponse struct {
	Error      string    `json:"error"`
	Message    string    `json:"message"`
	RetryAfter int       `json:"retry_after"`
	QuotaLimit int       `json:"quota_limit"`
	QuotaReset time.Time `json:"quota_reset"`
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
