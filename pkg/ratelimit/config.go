package ratelimit

import (
	"fmt"
	"time"
)

// Config holds the limits applied to /api traffic.
//
// Defaults mirror the community site's historical limits: 60 requests per
// 30 seconds per identity, 600 per 30 seconds per IP.
type Config struct {
	Enabled bool

	SessionLimit  int
	SessionWindow time.Duration

	IPLimit  int
	IPWindow time.Duration

	// MaxKeys bounds the in-memory store; least recently used keys are
	// evicted beyond it.
	MaxKeys int

	// BreakerFailureThreshold consecutive store failures open the breaker.
	BreakerFailureThreshold uint32
	BreakerTimeout          time.Duration
}

// DefaultConfig returns the built-in limits.
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		SessionLimit:            60,
		SessionWindow:           30 * time.Second,
		IPLimit:                 600,
		IPWindow:                30 * time.Second,
		MaxKeys:                 10000,
		BreakerFailureThreshold: 10,
		BreakerTimeout:          30 * time.Second,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.SessionLimit <= 0 {
		return fmt.Errorf("SessionLimit must be positive, got %d", c.SessionLimit)
	}
	if c.SessionWindow <= 0 {
		return fmt.Errorf("SessionWindow must be positive, got %s", c.SessionWindow)
	}
	if c.IPLimit <= 0 {
		return fmt.Errorf("IPLimit must be positive, got %d", c.IPLimit)
	}
	if c.IPWindow <= 0 {
		return fmt.Errorf("IPWindow must be positive, got %s", c.IPWindow)
	}
	if c.MaxKeys <= 0 {
		return fmt.Errorf("MaxKeys must be positive, got %d", c.MaxKeys)
	}
	if c.BreakerFailureThreshold == 0 {
		return fmt.Errorf("BreakerFailureThreshold must be positive")
	}
	if c.BreakerTimeout <= 0 {
		return fmt.Errorf("BreakerTimeout must be positive, got %s", c.BreakerTimeout)
	}
	return nil
}

// MaxWindow is the longest configured window; timestamps older than it are
// never consulted and can be cleaned up.
func (c Config) MaxWindow() time.Duration {
	if c.IPWindow > c.SessionWindow {
		return c.IPWindow
	}
	return c.SessionWindow
}
