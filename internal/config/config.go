package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks configuration documents that parsed but fail
// validation. Callers can test for it with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults applied when the document omits the corresponding keys.
const (
	DefaultNDays        = 1
	DefaultPollInterval = 30
	DefaultLogDir       = "logs"
	DefaultMetricsAddr  = ":9090"
)

// Auth holds the OAuth credential file locations and requested scopes.
type Auth struct {
	CredentialsFilename string   `yaml:"credentials_filename"`
	TokenFilename       string   `yaml:"token_filename"`
	Scopes              []string `yaml:"scopes"`
}

// Gmail holds the polling window and interval.
type Gmail struct {
	NDays        int `yaml:"n_days"`
	PollInterval int `yaml:"poll_interval"`
}

// Processing holds the optional message filters. Empty values disable
// the corresponding query clause.
type Processing struct {
	From    string `yaml:"from"`
	Subject string `yaml:"subject"`
}

// Logging holds the log file location.
type Logging struct {
	Dir string `yaml:"dir"`
}

// Observability configures the optional metrics/tracing stack. A zero
// value (section omitted) leaves instrumentation disabled.
type Observability struct {
	Enabled         bool   `yaml:"enabled"`
	MetricsAddr     string `yaml:"metrics_addr"`
	MetricsExporter string `yaml:"metrics_exporter"`
	TracesExporter  string `yaml:"traces_exporter"`
	OTLPEndpoint    string `yaml:"otlp_endpoint"`
	OTLPInsecure    bool   `yaml:"otlp_insecure"`
}

// Settings is the full configuration document. It is loaded once per
// process and passed by value into each component; nothing mutates it
// after Load returns.
type Settings struct {
	Auth          Auth          `yaml:"auth"`
	Gmail         Gmail         `yaml:"gmail"`
	Processing    Processing    `yaml:"processing"`
	Logging       Logging       `yaml:"logging"`
	Observability Observability `yaml:"observability"`
}

// Load reads and validates the YAML configuration document at path.
func Load(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}

	s.applyDefaults()

	if err := s.validate(); err != nil {
		return s, err
	}

	return s, nil
}

func (s *Settings) applyDefaults() {
	if s.Gmail.NDays == 0 {
		s.Gmail.NDays = DefaultNDays
	}
	if s.Gmail.PollInterval == 0 {
		s.Gmail.PollInterval = DefaultPollInterval
	}
	if s.Logging.Dir == "" {
		s.Logging.Dir = DefaultLogDir
	}
	if s.Observability.MetricsAddr == "" {
		s.Observability.MetricsAddr = DefaultMetricsAddr
	}
	if s.Observability.MetricsExporter == "" {
		s.Observability.MetricsExporter = "prometheus"
	}
}

func (s *Settings) validate() error {
	if s.Auth.CredentialsFilename == "" {
		return fmt.Errorf("%w: auth.credentials_filename is required", ErrInvalidConfig)
	}
	if s.Auth.TokenFilename == "" {
		return fmt.Errorf("%w: auth.token_filename is required", ErrInvalidConfig)
	}
	if len(s.Auth.Scopes) == 0 {
		return fmt.Errorf("%w: auth.scopes must list at least one scope", ErrInvalidConfig)
	}
	if s.Gmail.NDays < 0 {
		return fmt.Errorf("%w: gmail.n_days must not be negative", ErrInvalidConfig)
	}
	if s.Gmail.PollInterval < 1 {
		return fmt.Errorf("%w: gmail.poll_interval must be at least 1 second", ErrInvalidConfig)
	}
	return nil
}
