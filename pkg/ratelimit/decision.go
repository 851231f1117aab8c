package ratelimit

import (
	"fmt"
	"time"
)

// Decision is the outcome of a single limiter check.
type Decision struct {
	Key         string
	LimiterType string
	Allowed     bool
	Limit       int
	Remaining   int
	ResetAt     time.Time
	RetryAfter  time.Duration
}

func (d *Decision) String() string {
	if d.Allowed {
		return fmt.Sprintf("Decision{allowed key=%s type=%s remaining=%d/%d}",
			d.Key, d.LimiterType, d.Remaining, d.Limit)
	}
	return fmt.Sprintf("Decision{denied key=%s type=%s limit=%d retry_after=%s}",
		d.Key, d.LimiterType, d.Limit, d.RetryAfter)
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, minimum 1 for a
// denied decision so clients never see "Retry-After: 0".
func (d *Decision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		if d.Allowed {
			return 0
		}
		return 1
	}
	secs := int64(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

func allowed(key, limiterType string, limit, remaining int, resetAt time.Time) *Decision {
	if remaining < 0 {
		remaining = 0
	}
	return &Decision{
		Key:         key,
		LimiterType: limiterType,
		Allowed:     true,
		Limit:       limit,
		Remaining:   remaining,
		ResetAt:     resetAt,
	}
}

func denied(key, limiterType string, limit int, resetAt time.Time, retryAfter time.Duration) *Decision {
	if retryAfter < 0 {
		retryAfter = 0
	}
	return &Decision{
		Key:         key,
		LimiterType: limiterType,
		Allowed:     false,
		Limit:       limit,
		ResetAt:     resetAt,
		RetryAfter:  retryAfter,
	}
}
