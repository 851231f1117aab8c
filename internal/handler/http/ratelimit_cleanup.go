package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"community-gateway/pkg/config"
	"community-gateway/pkg/ratelimit"
)

// DefaultCleanupSchedule runs store cleanup every five minutes.
const DefaultCleanupSchedule = "@every 5m"

// CleanupTarget is one limiter store to prune. Timestamps older than twice
// Window are dropped.
type CleanupTarget struct {
	LimiterType string
	Store       ratelimit.Store
	Window      time.Duration
}

// CleanupConfig holds the cron schedule for store cleanup.
type CleanupConfig struct {
	Schedule string
}

// LoadCleanupConfigFromEnv reads RATELIMIT_CLEANUP_SCHEDULE. An invalid
// schedule falls back to the default.
func LoadCleanupConfigFromEnv() CleanupConfig {
	return CleanupConfig{
		Schedule: config.GetEnvSchedule("RATELIMIT_CLEANUP_SCHEDULE", DefaultCleanupSchedule),
	}
}

// StartRateLimitCleanup schedules cleanup of every target and returns the
// running scheduler. The scheduler stops when ctx is cancelled.
func StartRateLimitCleanup(ctx context.Context, cfg CleanupConfig, m ratelimit.Metrics, targets ...CleanupTarget) (*cron.Cron, error) {
	if m == nil {
		m = ratelimit.NoOpMetrics{}
	}

	c := cron.New()
	for _, t := range targets {
		t := t
		if _, err := c.AddFunc(cfg.Schedule, func() { runCleanup(ctx, t, m) }); err != nil {
			return nil, fmt.Errorf("schedule %s limiter cleanup: %w", t.LimiterType, err)
		}
	}
	c.Start()

	slog.Info("rate limit cleanup scheduled",
		slog.String("schedule", cfg.Schedule),
		slog.Int("limiters", len(targets)))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		slog.Info("rate limit cleanup stopped")
	}()
	return c, nil
}

func runCleanup(ctx context.Context, t CleanupTarget, m ratelimit.Metrics) {
	if ctx.Err() != nil {
		return
	}
	cutoff := time.Now().Add(-2 * t.Window)

	removed, err := t.Store.Cleanup(ctx, cutoff)
	if err != nil {
		slog.Error("rate limit cleanup failed",
			slog.String("limiter_type", t.LimiterType),
			slog.Any("error", err))
		return
	}

	keys, err := t.Store.KeyCount(ctx)
	if err != nil {
		slog.Error("failed to get key count after cleanup",
			slog.String("limiter_type", t.LimiterType),
			slog.Any("error", err))
		return
	}
	m.SetActiveKeys(t.LimiterType, keys)

	slog.Debug("rate limit cleanup completed",
		slog.String("limiter_type", t.LimiterType),
		slog.Int("keys_removed", removed),
		slog.Int("active_keys", keys),
		slog.Time("cutoff_time", cutoff))
}
