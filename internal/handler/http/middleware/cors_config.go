package middleware

import (
	"fmt"
	"net/url"
	"strings"

	"community-gateway/pkg/config"
)

var (
	defaultCORSOrigins = []string{"http://localhost:3000"}
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{
		"Content-Type", "Authorization", "X-Request-ID",
		"apikey", "Prefer", "X-Upsert", "Accept-Profile", "Content-Profile",
	}
	defaultCORSExposed = []string{
		"X-Request-ID", "X-Trace-Id", "Content-Range", "Retry-After",
		"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
	}
)

var validMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true,
	"PATCH": true, "DELETE": true, "OPTIONS": true,
}

// LoadCORSConfig reads CORS_ALLOWED_ORIGINS, CORS_ALLOWED_METHODS,
// CORS_ALLOWED_HEADERS and CORS_MAX_AGE. Origins may use a leading
// wildcard label, e.g. https://*.example.com.
func LoadCORSConfig(logger CORSLogger) (CORSConfig, error) {
	origins := config.GetEnvStringList("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)
	for _, o := range origins {
		if err := validateOrigin(o); err != nil {
			return CORSConfig{}, err
		}
	}

	methods := config.GetEnvStringList("CORS_ALLOWED_METHODS", defaultCORSMethods)
	for i, m := range methods {
		m = strings.ToUpper(m)
		if !validMethods[m] {
			return CORSConfig{}, fmt.Errorf("invalid CORS method %q", m)
		}
		methods[i] = m
	}

	maxAge := config.GetEnvInt("CORS_MAX_AGE", 86400)
	if maxAge < 0 {
		return CORSConfig{}, fmt.Errorf("CORS_MAX_AGE must be non-negative, got %d", maxAge)
	}

	return CORSConfig{
		AllowedMethods: methods,
		AllowedHeaders: config.GetEnvStringList("CORS_ALLOWED_HEADERS", defaultCORSHeaders),
		ExposedHeaders: defaultCORSExposed,
		MaxAge:         maxAge,
		Validator:      NewOriginValidator(origins),
		Logger:         logger,
		EnforcePrefix:  "/api/",
	}, nil
}

func validateOrigin(origin string) error {
	u, err := url.Parse(strings.Replace(origin, "*.", "wildcard.", 1))
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must use http or https: %q", origin)
	}
	if u.Host == "" {
		return fmt.Errorf("origin has no host: %q", origin)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("origin must be scheme://host[:port]: %q", origin)
	}
	return nil
}
