// Package record persists discovery results to disk and loads them back.
// Saved documents keep a stable field order so consecutive saves stay
// diffable, and fields written by newer releases survive a load and save
// cycle untouched.
package record
