// Package otel publishes facade counters through an OpenTelemetry Meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per counter and one
// Int64ObservableGauge per latency bucket. A single callback reads
// [goOwner.Facade.MetricsSnapshot] on each collection cycle.
//
// The caller owns the MeterProvider; the exporter never mutates facade state.
package otel
