// Package ui renders human-readable console output.
//
// It narrates clone commands through the credential-safe formatter and turns
// bulk operation results into an ordered, per-target report followed by a
// summary line. Structured telemetry stays on the zap loggers; this package
// only shapes what a person watching the run reads.
package ui
