/*
Package observability exposes Prometheus metrics for dataset access.

Metrics.Instrument wraps a ports.Source so every Get is counted per domain,
and ObserveAssignment publishes the size of each aligned group.
*/
package observability
