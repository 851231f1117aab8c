// Package observability groups the gateway's logging, metrics and tracing
// subpackages.
//
// Subpackages:
//   - logging: slog JSON logger and context propagation
//   - metrics: Prometheus collectors for HTTP, backend and locale bundles
//   - tracing: OpenTelemetry middleware and tracer provider setup
package observability
