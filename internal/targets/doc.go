// Package targets resolves organization URLs, repository prefixes, and
// account rosters into the ordered repository targets bulk operations act on.
package targets
