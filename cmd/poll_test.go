package cmd

import (
	"path/filepath"
	"testing"

	"github.com/tverberg/gmailpoll/internal/config"
	"github.com/tverberg/gmailpoll/internal/instrumentation"
)

func TestObservabilityConfig(t *testing.T) {
	tests := []struct {
		name     string
		obs      config.Observability
		expected instrumentation.Config
	}{
		{
			name: "disabled keeps exporter defaults",
			obs:  config.Observability{},
			expected: instrumentation.Config{
				Enabled:         false,
				MetricsExporter: instrumentation.ExporterPrometheus,
				TracesExporter:  instrumentation.ExporterNone,
			},
		},
		{
			name: "enabled with explicit exporters",
			obs: config.Observability{
				Enabled:         true,
				MetricsExporter: "otlp",
				TracesExporter:  "otlp",
				OTLPEndpoint:    "localhost:4318",
				OTLPInsecure:    true,
			},
			expected: instrumentation.Config{
				Enabled:         true,
				MetricsExporter: "otlp",
				TracesExporter:  "otlp",
				OTLPEndpoint:    "localhost:4318",
				OTLPInsecure:    true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := observabilityConfig(tt.obs)

			if got.Enabled != tt.expected.Enabled {
				t.Errorf("Enabled = %v, want %v", got.Enabled, tt.expected.Enabled)
			}
			if got.MetricsExporter != tt.expected.MetricsExporter {
				t.Errorf("MetricsExporter = %q, want %q", got.MetricsExporter, tt.expected.MetricsExporter)
			}
			if got.TracesExporter != tt.expected.TracesExporter {
				t.Errorf("TracesExporter = %q, want %q", got.TracesExporter, tt.expected.TracesExporter)
			}
			if got.OTLPEndpoint != tt.expected.OTLPEndpoint {
				t.Errorf("OTLPEndpoint = %q, want %q", got.OTLPEndpoint, tt.expected.OTLPEndpoint)
			}
			if got.OTLPInsecure != tt.expected.OTLPInsecure {
				t.Errorf("OTLPInsecure = %v, want %v", got.OTLPInsecure, tt.expected.OTLPInsecure)
			}
			if got.ServiceName != "gmailpoll" {
				t.Errorf("ServiceName = %q, want %q", got.ServiceName, "gmailpoll")
			}
		})
	}
}

func TestPollCmd_MissingConfig(t *testing.T) {
	cmd := newPollCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing configuration file")
	}
}

func TestPollCmd_Flags(t *testing.T) {
	cmd := newPollCmd()

	if cmd.Flags().Lookup("config") == nil {
		t.Error("expected --config flag")
	}
	if got := cmd.Flags().Lookup("config").DefValue; got != "config.yaml" {
		t.Errorf("--config default = %q, want %q", got, "config.yaml")
	}
	if cmd.Flags().Lookup("watch") == nil {
		t.Error("expected --watch flag")
	}
	if cmd.Flags().Lookup("metrics-addr") == nil {
		t.Error("expected --metrics-addr flag")
	}
}
