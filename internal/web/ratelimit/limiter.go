// Package ratelimit throttles API clients. Keys are chosen by the caller;
// the web layer uses the API key prefix when a request is authenticated and
// the client address otherwise.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Decision, error)
}

// Decision reports the outcome of a rate limit check. Limit and Remaining
// feed the X-RateLimit response headers.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}
