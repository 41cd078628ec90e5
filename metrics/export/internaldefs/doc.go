// Package internaldefs holds the metric names and bucket bounds shared by the Prometheus
// and OTel exporters, so both publish identical series.
//
// Bounds mirror the facade's latency buckets; change them together.
package internaldefs
