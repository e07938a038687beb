// Package internaldefs holds the metric name and bucket definitions
// shared by the exporter implementations.
//
// Counter and histogram definitions live here so the Prometheus and
// OTel exporters publish identical series names and bucket boundaries.
// A change here changes every exporter at once.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
