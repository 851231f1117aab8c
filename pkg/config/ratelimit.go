package config

import (
	"log/slog"

	"community-gateway/pkg/ratelimit"
)

// LoadRateLimitConfig reads rate limiting settings.
//
// Environment variables:
//   - RATELIMIT_ENABLED (default: true)
//   - RATELIMIT_SESSION_LIMIT (default: 60)
//   - RATELIMIT_SESSION_WINDOW (default: 30s)
//   - RATELIMIT_IP_LIMIT (default: 600)
//   - RATELIMIT_IP_WINDOW (default: 30s)
//   - RATELIMIT_MAX_KEYS (default: 10000)
//   - RATELIMIT_CB_FAILURE_THRESHOLD (default: 10)
//   - RATELIMIT_CB_RECOVERY_TIMEOUT (default: 30s)
//
// Invalid values are logged and replaced by their defaults, so the result
// always passes Validate.
func LoadRateLimitConfig() ratelimit.Config {
	def := ratelimit.DefaultConfig()

	cfg := ratelimit.Config{
		Enabled:                 GetEnvBool("RATELIMIT_ENABLED", def.Enabled),
		SessionLimit:            positiveInt("RATELIMIT_SESSION_LIMIT", def.SessionLimit),
		SessionWindow:           positiveDuration("RATELIMIT_SESSION_WINDOW", def.SessionWindow),
		IPLimit:                 positiveInt("RATELIMIT_IP_LIMIT", def.IPLimit),
		IPWindow:                positiveDuration("RATELIMIT_IP_WINDOW", def.IPWindow),
		MaxKeys:                 positiveInt("RATELIMIT_MAX_KEYS", def.MaxKeys),
		BreakerFailureThreshold: uint32(positiveInt("RATELIMIT_CB_FAILURE_THRESHOLD", int(def.BreakerFailureThreshold))),
		BreakerTimeout:          positiveDuration("RATELIMIT_CB_RECOVERY_TIMEOUT", def.BreakerTimeout),
	}

	if err := cfg.Validate(); err != nil {
		slog.Warn("rate limit configuration validation failed, applying defaults",
			slog.String("error", err.Error()))
		return def
	}
	return cfg
}

func warnDefault(key, value, defaultValue string, err error) {
	slog.Warn("invalid "+key+", using default",
		slog.String("value", value),
		slog.String("default", defaultValue),
		slog.String("error", err.Error()))
}
