package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// GuardedStore wraps a Store with a circuit breaker and fails open: when the
// underlying store errors or the breaker is open, requests are allowed.
type GuardedStore struct {
	inner       Store
	breaker     *gobreaker.CircuitBreaker
	metrics     Metrics
	limiterType string
}

// NewGuardedStore trips after threshold consecutive failures and probes the
// store again after timeout.
func NewGuardedStore(inner Store, limiterType string, threshold uint32, timeout time.Duration, metrics Metrics) *GuardedStore {
	if metrics == nil {
		metrics = NoOpMetrics{}
	}
	settings := gobreaker.Settings{
		Name:        "ratelimit-" + limiterType,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &GuardedStore{
		inner:       inner,
		breaker:     gobreaker.NewCircuitBreaker(settings),
		metrics:     metrics,
		limiterType: limiterType,
	}
}

func (g *GuardedStore) CheckAndAdd(ctx context.Context, key string, timestamp, cutoff time.Time, limit int) (CheckResult, error) {
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.CheckAndAdd(ctx, key, timestamp, cutoff, limit)
	})
	if err != nil {
		g.metrics.RecordStoreFailure(g.limiterType)
		slog.Warn("rate limit store unavailable, allowing request",
			slog.String("limiter_type", g.limiterType),
			slog.String("error", err.Error()))
		return CheckResult{Allowed: true}, nil
	}
	return res.(CheckResult), nil
}

func (g *GuardedStore) Count(ctx context.Context, key string, cutoff time.Time) (int, error) {
	return g.inner.Count(ctx, key, cutoff)
}

func (g *GuardedStore) Cleanup(ctx context.Context, cutoff time.Time) (int, error) {
	return g.inner.Cleanup(ctx, cutoff)
}

func (g *GuardedStore) KeyCount(ctx context.Context) (int, error) {
	return g.inner.KeyCount(ctx)
}

// State exposes the breaker state for health reporting.
func (g *GuardedStore) State() gobreaker.State {
	return g.breaker.State()
}
