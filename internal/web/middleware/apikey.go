package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jobhunt-app/jobhunt/internal/store"
	"github.com/jobhunt-app/jobhunt/internal/web/response"
)

// APIKeyContextKey is the context key the authenticated key is stored under.
const APIKeyContextKey ContextKey = "api_key"

// Authenticator resolves a presented token to an API key.
type Authenticator interface {
	AuthenticateAPIKey(ctx context.Context, token string) (*store.APIKey, error)
}

// APIKeyAuth authenticates requests by API key. The key is read from the
// Authorization header ("Bearer jh_..."), the X-API-Key header, or the
// api_key query parameter. A presented key must be valid and must carry the
// scope the method requires; when required is false, requests without a key
// pass through anonymously. skipPaths bypass the check entirely.
func APIKeyAuth(auth Authenticator, required bool, skipPaths ...string) Middleware {
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

			token := extractAPIKey(r)
			if token == "" {
				if required {
					response.Error(w, http.StatusUnauthorized, "API key required")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			key, err := auth.AuthenticateAPIKey(r.Context(), token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid API key")
				return
			}
			if !key.Allows(requiredScope(r.Method)) {
				response.Error(w, http.StatusForbidden, "Insufficient API key permissions")
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAPIKey extracts the authenticated key from the context, if any.
func GetAPIKey(ctx context.Context) *store.APIKey {
	key, _ := ctx.Value(APIKeyContextKey).(*store.APIKey)
	return key
}

func requiredScope(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	default:
		return "write"
	}
}

func extractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if token := strings.TrimPrefix(auth, "Bearer "); strings.HasPrefix(token, store.KeyPrefix) {
			return token
		}
	}
	if token := r.Header.Get("X-API-Key"); strings.HasPrefix(token, store.KeyPrefix) {
		return token
	}
	if token := r.URL.Query().Get("api_key"); strings.HasPrefix(token, store.KeyPrefix) {
		return token
	}
	return ""
}
