// Package bulk dispatches one operation across many repository targets with
// bounded concurrency, transient retries, and fatal-halt semantics.
package bulk
