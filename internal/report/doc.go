// Package report loads a saved discovery record, validates it, and prints
// the configuration that produced it along with the repositories it holds.
package report
