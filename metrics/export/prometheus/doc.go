// Package prometheus renders engine metrics for Prometheus scrapes.
//
// [NewExporter] accepts an [adminauth.Engine] and exposes an
// [net/http.Handler] that writes every counter and histogram in text
// exposition format. Counter names are prefixed adminauth_*_total; the
// single histogram is adminauth_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount
//     the Handler where they want it.
//   - Mutate engine state.
package prometheus
