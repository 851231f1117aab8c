package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge is the preflight cache time in seconds.
	MaxAge int

	Validator OriginValidator
	Logger    CORSLogger

	// EnforcePrefix is the path prefix on which a disallowed Origin is
	// rejected with 403. Elsewhere it only gets no CORS headers.
	EnforcePrefix string
}

// OriginValidator decides whether an Origin may call the API.
type OriginValidator interface {
	IsAllowed(origin string) bool
	AllowedOrigins() []string
}

// CORS answers preflights for allowed origins with 204, echoes allowed
// origins with credentials, and rejects other origins on EnforcePrefix.
// Requests without an Origin header pass through untouched.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = NoOpLogger{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")

			if !cfg.Validator.IsAllowed(origin) {
				logger.Warn(r.Context(), "CORS: origin not allowed",
					"origin", origin,
					"path", r.URL.Path,
					"method", r.Method,
				)
				if cfg.EnforcePrefix != "" && strings.HasPrefix(r.URL.Path, cfg.EnforcePrefix) {
					writeOriginDenied(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			if exposed != "" {
				w.Header().Set("Access-Control-Expose-Headers", exposed)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				logger.Debug(r.Context(), "CORS: preflight request",
					"origin", origin,
					"requested_method", r.Header.Get("Access-Control-Request-Method"),
					"requested_headers", r.Header.Get("Access-Control-Request-Headers"),
				)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeOriginDenied(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "origin not allowed"})
}
