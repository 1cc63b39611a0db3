package instrumentation

import (
	"fmt"
)

// Exporter types.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Result values for OAuth and poll-pass metrics.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Status values for API operation metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName identifies the service in exported telemetry.
	ServiceName string

	// ServiceVersion is the build version.
	ServiceVersion string

	// Enabled determines whether any telemetry is produced.
	Enabled bool

	// MetricsExporter is one of "prometheus", "otlp" or "stdout".
	MetricsExporter string

	// TracesExporter is one of "otlp", "stdout" or "none".
	TracesExporter string

	// OTLPEndpoint is the OTLP collector endpoint, e.g. "localhost:4318",
	// without a protocol prefix. Required for the otlp exporters.
	OTLPEndpoint string

	// OTLPInsecure disables TLS for OTLP export. Development only.
	OTLPInsecure bool

	// TraceSamplingRate is the trace sampling ratio (0.0 to 1.0).
	TraceSamplingRate float64
}

// DefaultConfig returns a disabled configuration with exporter defaults
// filled in.
func DefaultConfig() Config {
	return Config{
		ServiceName:       "gmailpoll",
		ServiceVersion:    "unknown",
		Enabled:           false,
		MetricsExporter:   ExporterPrometheus,
		TracesExporter:    ExporterNone,
		TraceSamplingRate: 0.1,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetricsExporters := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	validTracesExporters := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracesExporter != "" && !validTracesExporters[c.TracesExporter] {
		return fmt.Errorf("invalid traces exporter %q, must be one of: otlp, stdout, none", c.TracesExporter)
	}

	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}
	if c.TracesExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP traces exporter")
	}

	return nil
}
