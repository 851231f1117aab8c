// Package metrics declares the gateway's Prometheus collectors.
//
// Collectors are registered with the default registry through promauto and
// exposed on /metrics.
package metrics
