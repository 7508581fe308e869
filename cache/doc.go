// Package cache provides the multi-provider result cache for command
// dispatch.
//
// It defines the Adapter contract with per-adapter statistics, an in-memory
// adapter with a memory budget and pluggable eviction, a file-per-key
// adapter with persisted access metadata, a fan-out Manager over an ordered
// provider list, and deterministic SHA-256 invocation keys.
package cache
