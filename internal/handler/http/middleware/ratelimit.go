package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"community-gateway/pkg/ratelimit"
)

// SessionCookieName keys anonymous callers for rate limiting.
const SessionCookieName = "session_id"

// RateLimitConfig wires the two sliding-window limiters.
type RateLimitConfig struct {
	// Identity limits per JWT subject, or per session_id cookie.
	Identity *ratelimit.Limiter
	// IP limits per client address, independently of Identity.
	IP          *ratelimit.Limiter
	IPExtractor IPExtractor

	// Subject returns the verified JWT subject of the request, or "".
	Subject func(ctx context.Context) string

	// Prefix limits which paths are counted. Default "/api/".
	Prefix string
	// SecureCookie marks the session_id cookie Secure.
	SecureCookie bool
}

// RateLimit applies the IP limiter, then the identity limiter, to paths
// under Prefix. A denied request gets 429 with Retry-After. Limiter errors
// let the request through.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Prefix == "" {
		cfg.Prefix = "/api/"
	}
	if cfg.IPExtractor == nil {
		cfg.IPExtractor = RemoteAddrExtractor{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, cfg.Prefix) {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.IP != nil {
				ip, err := cfg.IPExtractor.ExtractIP(r)
				if err != nil {
					slog.Warn("rate limiter: cannot determine client ip", slog.String("remote_addr", r.RemoteAddr))
					ip = r.RemoteAddr
				}
				if !check(w, r, cfg.IP, "ip:"+ip) {
					return
				}
			}

			if cfg.Identity != nil {
				if !check(w, r, cfg.Identity, identityKey(w, r, cfg)) {
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// identityKey prefers the JWT subject and falls back to the session_id
// cookie, issuing one when the caller has none.
func identityKey(w http.ResponseWriter, r *http.Request, cfg RateLimitConfig) string {
	if cfg.Subject != nil {
		if sub := cfg.Subject(r.Context()); sub != "" {
			return "user:" + hashKey(sub)
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return "session:" + c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return "session:" + id
}

// check runs one limiter and writes the 429 when it denies.
func check(w http.ResponseWriter, r *http.Request, l *ratelimit.Limiter, key string) bool {
	d, err := l.Allow(r.Context(), key)
	if err != nil {
		slog.Error("rate limiter: check failed, allowing request",
			slog.String("limiter_type", l.Type),
			slog.String("error", err.Error()))
		return true
	}

	setRateLimitHeaders(w, d)
	if d.Allowed {
		return true
	}

	slog.Warn("rate limit exceeded",
		slog.String("limiter_type", d.LimiterType),
		slog.String("key", shortKey(key)),
		slog.Int("limit", d.Limit),
		slog.Int64("retry_after", d.RetryAfterSeconds()),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))

	retry := d.RetryAfterSeconds()
	w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":               "Too Many Requests",
		"retry_after_seconds": retry,
	})
	return false
}

func setRateLimitHeaders(w http.ResponseWriter, d *ratelimit.Decision) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	h.Set("X-RateLimit-Type", d.LimiterType)
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func shortKey(k string) string {
	if len(k) > 24 {
		return k[:24]
	}
	return k
}
