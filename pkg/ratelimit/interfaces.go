// Package ratelimit implements sliding-window rate limiting for the gateway's
// /api surface. Limiters are keyed by an opaque identity (a JWT subject, a
// session cookie, or a client IP) and share a pluggable Store.
package ratelimit

import (
	"context"
	"time"
)

// Store persists request timestamps per key.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// CheckAndAdd counts requests for key newer than cutoff and, when the
	// count is below limit, records timestamp. The check and the write
	// happen atomically.
	CheckAndAdd(ctx context.Context, key string, timestamp, cutoff time.Time, limit int) (CheckResult, error)

	// Count returns the number of requests for key newer than cutoff.
	Count(ctx context.Context, key string, cutoff time.Time) (int, error)

	// Cleanup drops timestamps older than cutoff and removes empty keys.
	Cleanup(ctx context.Context, cutoff time.Time) (removed int, err error)

	// KeyCount returns the number of tracked keys.
	KeyCount(ctx context.Context) (int, error)
}

// CheckResult is the outcome of Store.CheckAndAdd.
type CheckResult struct {
	Allowed bool
	// Count is the number of requests in the window after the call.
	Count int
	// Oldest is the earliest timestamp still in the window, zero when the
	// window is empty. The next slot frees when it leaves the window.
	Oldest time.Time
}

// Metrics receives limiter events.
type Metrics interface {
	RecordAllowed(limiterType string)
	RecordDenied(limiterType string)
	RecordCheckDuration(limiterType string, d time.Duration)
	SetActiveKeys(limiterType string, count int)
	RecordStoreFailure(limiterType string)
	RecordEviction(limiterType string, count int)
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
