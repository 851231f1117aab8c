// Package http holds the gateway's cross-cutting HTTP pieces: health
// probes, request logging and recovery, metrics and the rate-limit store
// cleanup schedule. Route handlers live in the sub-packages.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"community-gateway/internal/handler/http/respond"
	"community-gateway/pkg/ratelimit"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is one component's result. Status is "healthy", "degraded"
// or "unhealthy".
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// RateLimiterHealthInfo reports one limiter store.
type RateLimiterHealthInfo struct {
	ActiveKeys     int    `json:"active_keys"`
	CircuitBreaker string `json:"circuit_breaker"`
}

// BackendChecker probes the Supabase project.
type BackendChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler serves /health. Only the backend decides overall health;
// the direct database connection is optional and reported as degraded when
// it fails, and rate limiter state is informational.
type HealthHandler struct {
	Backend BackendChecker
	DB      *sql.DB
	Version string

	// Limiters maps a limiter type ("session", "ip") to its store.
	Limiters map[string]*ratelimit.GuardedStore
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	healthy := true

	// Supabase バックエンドチェック（全体のステータスを決定する）
	if h.Backend != nil {
		c := checkBackend(ctx, h.Backend)
		checks["supabase"] = c
		healthy = c.Status == "healthy"
	}

	// データベース接続チェック（未設定なら省略、失敗しても degraded のみ）
	if h.DB != nil {
		checks["database"] = h.checkDatabase(ctx)
	} else {
		checks["database"] = CheckStatus{Status: "healthy", Message: "not configured"}
	}

	// レート制限チェック
	if len(h.Limiters) > 0 {
		checks["rate_limiter"] = h.checkRateLimiter(ctx)
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	// レスポンス作成
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func checkBackend(ctx context.Context, b BackendChecker) CheckStatus {
	if err := b.Health(ctx); err != nil {
		return CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
	}
	return CheckStatus{Status: "healthy"}
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: "degraded", Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
		details["utilization_percent"] = utilization
		if utilization >= 80.0 {
			return CheckStatus{
				Status:  "degraded",
				Message: "connection pool utilization above 80%",
				Details: details,
			}
		}
	}

	return CheckStatus{Status: "healthy", Details: details}
}

// checkRateLimiter is always healthy: an open breaker means the limiter
// fails open, not that the gateway is down.
func (h *HealthHandler) checkRateLimiter(ctx context.Context) CheckStatus {
	details := make(map[string]any, len(h.Limiters))
	for kind, store := range h.Limiters {
		info := RateLimiterHealthInfo{CircuitBreaker: store.State().String()}
		if n, err := store.KeyCount(ctx); err == nil {
			info.ActiveKeys = n
		}
		details[kind] = info
	}
	return CheckStatus{Status: "healthy", Details: details}
}

// ReadyHandler serves /ready: 200 once the backend answers.
type ReadyHandler struct {
	Backend BackendChecker
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Backend != nil {
		if err := h.Backend.Health(ctx); err != nil {
			http.Error(w, "backend not ready", http.StatusServiceUnavailable)
			return
		}
	}
	writeText(w, "ready")
}

// LiveHandler serves /live and always answers 200.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "alive")
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(s)); err != nil {
		slog.Debug("probe: failed to write response", slog.String("error", err.Error()))
	}
}
