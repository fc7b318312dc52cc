// Package comment posts pull request comments across the repositories of a
// GitHub Classroom style organization. It owns the greeting templates shared
// with the access command: every message opens by addressing the account, and
// access-change notifications carry the standard instructor guidance.
package comment
