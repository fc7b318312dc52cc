// Package discover searches GitHub for repositories matching content and
// structure criteria. Search qualifiers narrow candidates server-side, a
// bounded breadth-first walk confirms required files, and the surviving
// repositories are printed and optionally persisted as a discovery record.
package discover
