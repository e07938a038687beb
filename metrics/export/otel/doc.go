// Package otel bridges engine metrics into OpenTelemetry instruments.
//
// [NewExporter] registers an Int64ObservableCounter per engine counter
// and Int64ObservableGauges for the latency histogram buckets. A single
// callback reads [adminauth.Engine.MetricsSnapshot] on each collection
// cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
