/*
Package observability provides Prometheus metrics for the Toybox sync layer.

Metrics are fed two ways: session lifecycle hooks (opened, committed,
discarded, duration) and the engine-call observer used by
middleware.Instrument (per-operation latency).
*/
package observability
