// Package instrumentation provides OpenTelemetry metrics and tracing for
// the poller.
//
// When disabled (the default), the provider hands out no-op recorders and
// tracers so callers never need to guard instrumentation calls. When
// enabled, metrics are exported through Prometheus, OTLP or stdout, and
// poll passes can additionally be traced through OTLP or stdout
// exporters.
package instrumentation
