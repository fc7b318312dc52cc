// Package access changes collaborator permissions across the repositories of
// a GitHub Classroom style organization. Every listed account maps to one
// prefixed repository; the service applies the requested access level to each
// target through the bulk dispatcher and can notify accounts with a pull
// request comment after a successful change.
package access
