// Package status reports the most recent GitHub Actions workflow run for
// every repository of a GitHub Classroom style organization. Alongside the
// per-repository console summary it can emit a CSV report of the collected
// run outcomes.
package status
