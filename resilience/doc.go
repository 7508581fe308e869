// Package resilience provides the execution guards used around command
// dispatch: a bulkhead bounding concurrent executions, an optional
// wall-clock timeout, a circuit breaker for isolating failing cache
// providers, and single-flight coalescing of identical in-flight work.
package resilience
