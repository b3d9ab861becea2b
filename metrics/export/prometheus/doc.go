// Package prometheus provides Prometheus collectors for ngio metrics.
//
// [NewPrometheusExporter] accepts an [ngio.Session] and exposes an [http.Handler]
// that renders all ngio counters and histograms in Prometheus text exposition format.
// Counter names are prefixed ngio_*_total; the single histogram is
// ngio_call_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate session state.
package prometheus
