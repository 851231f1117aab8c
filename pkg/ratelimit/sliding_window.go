package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limiter applies a sliding window of Limit requests per Window to a key.
type Limiter struct {
	Type   string
	Limit  int
	Window time.Duration

	store   Store
	clock   Clock
	metrics Metrics
}

// NewLimiter builds a limiter over store. clock and metrics may be nil.
func NewLimiter(limiterType string, limit int, window time.Duration, store Store, clock Clock, metrics Metrics) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	if metrics == nil {
		metrics = NoOpMetrics{}
	}
	return &Limiter{
		Type:    limiterType,
		Limit:   limit,
		Window:  window,
		store:   store,
		clock:   clock,
		metrics: metrics,
	}
}

// Allow records one request for key and reports whether it fits the window.
func (l *Limiter) Allow(ctx context.Context, key string) (*Decision, error) {
	start := l.clock.Now()
	defer func() {
		l.metrics.RecordCheckDuration(l.Type, time.Since(start))
	}()

	now := start
	cutoff := now.Add(-l.Window)

	res, err := l.store.CheckAndAdd(ctx, key, now, cutoff, l.Limit)
	if err != nil {
		return nil, fmt.Errorf("check %s limit: %w", l.Type, err)
	}

	// the window frees a slot when its oldest request ages out
	resetAt := now.Add(l.Window)
	if !res.Oldest.IsZero() {
		resetAt = res.Oldest.Add(l.Window)
	}

	if res.Allowed {
		l.metrics.RecordAllowed(l.Type)
		return allowed(key, l.Type, l.Limit, l.Limit-res.Count, resetAt), nil
	}

	l.metrics.RecordDenied(l.Type)
	return denied(key, l.Type, l.Limit, resetAt, resetAt.Sub(now)), nil
}
