// Package clone copies the repositories of a GitHub Classroom style
// organization into a local directory through the git command line. Remote
// URLs embed the credential for authentication; every rendered command line
// and message redacts it.
package clone
