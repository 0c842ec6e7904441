/*
Package metrics exposes glvault's Prometheus metrics: relay outcome
counts and latency, quota rejections, credential store mutations, and
audit-entry counts. All metrics are package-level and registered at
init(); Handler() serves them at /metrics in Prometheus text format.

MustRegister runs at init, Handler() wraps promhttp, and the Timer
convenience type threads a single start time through a request's
counter and histogram observations. The metric catalog itself is
specific to the vault domain (see metrics.go's var block for the full
list).
*/
package metrics
