// Package otel provides OpenTelemetry metric exporter bindings for ngio counters and
// histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each ngio metric
// and Int64ObservableGauge per histogram bucket. A single callback reads
// [ngio.Session.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate session state.
package otel
