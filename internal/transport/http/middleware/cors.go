package middleware

import (
	"net/http"
	"strings"
)

// CORS handles cross-origin requests for the configured origins. An empty
// origin list allows every origin, which is only acceptable in development.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	allowedMethods := strings.Join([]string{"GET", "POST", "OPTIONS"}, ", ")
	allowedHeaders := strings.Join([]string{"Accept", "Authorization", "Content-Type"}, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if isOriginAllowed(origin, allowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
				w.Header().Set("Access-Control-Max-Age", "3600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isOriginAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
		// Wildcard subdomains: *.example.com matches app.example.com
		// but not example.com itself.
		if strings.HasPrefix(a, "*.") {
			suffix := strings.TrimPrefix(a, "*.")
			if strings.HasSuffix(origin, suffix) {
				prefix := strings.TrimSuffix(origin, suffix)
				if prefix != "" && strings.HasSuffix(prefix, ".") {
					return true
				}
			}
		}
	}
	return false
}
