// Package execshell provides structured helpers for invoking git.
//
// It wraps os/exec behind ShellExecutor so repository clones run with
// structured logging and observer notifications, and it redacts credentials
// embedded in clone URLs before anything reaches a log line or an error
// message.
package execshell
