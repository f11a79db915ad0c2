// ABOUTME: Cross-origin policy middleware for browser clients
// ABOUTME: Exposes the Authorization response header so clients can read the token

package server

import (
	"net/http"

	"github.com/varnhold/tollgate/internal/config"
)

// withCORS wraps the handler with cross-origin headers for the configured
// origin. The Authorization header must be exposed because the login route
// returns the bearer token there. Disabled when no origin is configured.
func withCORS(cfg config.CORSConfig, next http.Handler) http.Handler {
	if cfg.AllowedOrigin == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "*" || origin == cfg.AllowedOrigin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Expose-Headers", "Authorization")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
			}
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
