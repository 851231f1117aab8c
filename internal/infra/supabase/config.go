// Package supabase is a small client for a hosted Supabase project: the
// PostgREST row API and the GoTrue auth API.
//
// A Factory hands out three kinds of clients. Cookie clients act as the
// signed-in user of an incoming request, ServiceRole clients bypass row
// level security, and Anon clients use the public key. Which one a caller
// gets is decided by the method it calls.
package supabase

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"community-gateway/pkg/config"
)

// Config holds the project's coordinates and credentials.
type Config struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string

	// ProjectRef is the first label of the project host and names the auth
	// cookie: sb-<ref>-auth-token.
	ProjectRef string

	HTTPTimeout          time.Duration
	MaxRequestsPerSecond int
	Burst                int
}

var (
	ErrMissingURL     = errors.New("supabase: SUPABASE_URL is required")
	ErrMissingAnonKey = errors.New("supabase: SUPABASE_ANON_KEY is required")
)

// LoadConfig reads the SUPABASE_* variables, falling back to the
// NEXT_PUBLIC_* names used by the web client for the URL and anon key.
func LoadConfig() (Config, error) {
	cfg := Config{
		URL:                  config.GetEnvFirst("", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"),
		AnonKey:              config.GetEnvFirst("", "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"),
		ServiceRoleKey:       config.GetEnvString("SUPABASE_SERVICE_ROLE_KEY", ""),
		JWTSecret:            config.GetEnvString("SUPABASE_JWT_SECRET", ""),
		HTTPTimeout:          config.GetEnvDuration("SUPABASE_HTTP_TIMEOUT", 10*time.Second),
		MaxRequestsPerSecond: config.GetEnvInt("SUPABASE_MAX_RPS", 50),
		Burst:                config.GetEnvInt("SUPABASE_BURST", 100),
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.URL == "" {
		return ErrMissingURL
	}
	if c.AnonKey == "" {
		return ErrMissingAnonKey
	}
	c.URL = strings.TrimRight(c.URL, "/")

	ref, err := projectRef(c.URL)
	if err != nil {
		return err
	}
	c.ProjectRef = ref
	c.fillDefaults()
	return nil
}

func (c *Config) fillDefaults() {
	c.URL = strings.TrimRight(c.URL, "/")
	if c.ProjectRef == "" {
		c.ProjectRef, _ = projectRef(c.URL)
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.MaxRequestsPerSecond <= 0 {
		c.MaxRequestsPerSecond = 50
	}
	if c.Burst <= 0 {
		c.Burst = 100
	}
}

// CookieName is the base name of the session cookie.
func (c Config) CookieName() string {
	return "sb-" + c.ProjectRef + "-auth-token"
}

func projectRef(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("supabase: parse url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("supabase: url %q has no host", raw)
	}
	ref, _, _ := strings.Cut(host, ".")
	return ref, nil
}
