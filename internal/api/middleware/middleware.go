package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/mcoot/aliasgame/internal/api/apierr"
	"github.com/mcoot/aliasgame/internal/middleware"
)

// APIKeyHeader carries the shared backend key
const APIKeyHeader = "apikey"

// APIKey rejects requests whose apikey header does not match key.
// An empty key disables the check.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Recovery creates panic recovery middleware that answers with the JSON error envelope
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// RateLimit shares one token bucket across every request it wraps.
// A non-positive limit disables it.
func RateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	// mux re-applies middleware on every match, so the bucket lives out here
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				apierr.WriteError(w, apierr.NewRateLimitedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
