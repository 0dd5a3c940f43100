// Package telemetry groups the observability concerns of saturn.
//
// Subpackages:
//
//   - logging: structured slog logger construction from configuration
//   - metrics: Prometheus metric definitions and the /metrics handler
//   - health: liveness and readiness probes for long-running processes
//
// Components never log through a package-level global; the process
// entry point builds one *slog.Logger and injects it everywhere.
package telemetry
