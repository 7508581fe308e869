// Package observe provides telemetry primitives for command dispatch:
// structured logging, OpenTelemetry tracing and metrics, and exporter
// configuration.
package observe
