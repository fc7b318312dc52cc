// Package structure walks repository trees breadth first to decide whether a
// repository contains every required file or directory name within a bounded
// depth.
package structure
