package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ContextKey is a private key type to avoid context collisions.
type ContextKey string

// RequestIDKey is the context key the request ID is stored under.
const RequestIDKey ContextKey = "request_id"

// RequestIDHeader is the header the request ID is read from and echoed into.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a unique ID, honoring one supplied by
// the client.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			w.Header().Set(RequestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID extracts the request ID from the context, or "" if absent.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
