// Package memory provides in-process implementations of the assignment
// store and locker ports, used by tests and single-worker runs.
package memory
