package middleware

import (
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/web/ratelimit"
	"github.com/jobhunt-app/jobhunt/internal/web/response"
)

// RateLimit throttles requests through the limiter. Authenticated requests
// are keyed by API key prefix, anonymous ones by client address, so one
// noisy client cannot exhaust another's budget. Limiter failures fail open:
// the request proceeds and the error is logged. skipPaths bypass the check.
func RateLimit(limiter ratelimit.Limiter, logger *zap.Logger, skipPaths ...string) Middleware {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			decision, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				logger.Warn("rate limit check failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				response.Error(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if key := GetAPIKey(r.Context()); key != nil {
		return "key:" + key.Prefix
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
