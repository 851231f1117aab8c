package middleware

import (
	"context"
	"log/slog"

	"community-gateway/internal/observability/logging"
)

// CORSLogger receives CORS policy events.
type CORSLogger interface {
	Warn(ctx context.Context, msg string, args ...any)
	Debug(ctx context.Context, msg string, args ...any)
}

// SlogAdapter logs CORS events with request id and trace id attached.
type SlogAdapter struct {
	Logger *slog.Logger
}

func (a SlogAdapter) Warn(ctx context.Context, msg string, args ...any) {
	logging.ForRequest(ctx, a.logger()).WarnContext(ctx, msg, args...)
}

func (a SlogAdapter) Debug(ctx context.Context, msg string, args ...any) {
	logging.ForRequest(ctx, a.logger()).DebugContext(ctx, msg, args...)
}

func (a SlogAdapter) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// NoOpLogger discards CORS events.
type NoOpLogger struct{}

func (NoOpLogger) Warn(context.Context, string, ...any) {}

func (NoOpLogger) Debug(context.Context, string, ...any) {}
