// Package prometheus renders facade metrics in the Prometheus text exposition format.
//
// [NewPrometheusExporter] takes a [goOwner.Facade] and exposes an [http.Handler].
// Counters are named goowner_*_total; the single histogram is
// goowner_backend_latency_seconds. Nothing is registered in a global registry; callers
// mount the handler themselves.
package prometheus
