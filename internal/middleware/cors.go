// Package middleware provides HTTP middleware for the relay API.
package middleware

import (
	"net/http"

	"github.com/voicebridge/convoai-relay/internal/origin"
)

// CORS returns middleware that reflects the request origin. Only the bridge
// route is expected to receive browser traffic, so it alone is restricted to
// validated origins; webhook traffic comes from the notification service and
// carries no origin at all.
func CORS(origins *origin.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqOrigin := r.Header.Get("Origin")

			allowed := reqOrigin != ""
			if allowed && r.URL.Path == "/pstn" {
				allowed = origins.IsAllowed(reqOrigin)
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", reqOrigin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "*")
				w.Header().Set("Access-Control-Expose-Headers", "*")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
