// Package ratelimit arbitrates the remaining GitHub API call quota across
// concurrent workers.
//
// It exposes Governor, a single shared admission point whose Acquire method
// suspends callers once the reported quota is exhausted and releases them when
// the service-declared reset time elapses, and Snapshot, the telemetry record
// ingested from API response metadata.
package ratelimit
