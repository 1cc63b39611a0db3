package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
auth:
  credentials_filename: credentials.json
  token_filename: token.json
  scopes:
    - https://www.googleapis.com/auth/gmail.modify
gmail:
  n_days: 7
  poll_interval: 5
processing:
  from: billing@example.com
  subject: Invoice
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "credentials.json", s.Auth.CredentialsFilename)
	assert.Equal(t, "token.json", s.Auth.TokenFilename)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/gmail.modify"}, s.Auth.Scopes)
	assert.Equal(t, 7, s.Gmail.NDays)
	assert.Equal(t, 5, s.Gmail.PollInterval)
	assert.Equal(t, "billing@example.com", s.Processing.From)
	assert.Equal(t, "Invoice", s.Processing.Subject)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  credentials_filename: credentials.json
  token_filename: token.json
  scopes:
    - https://www.googleapis.com/auth/gmail.modify
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultNDays, s.Gmail.NDays)
	assert.Equal(t, DefaultPollInterval, s.Gmail.PollInterval)
	assert.Equal(t, DefaultLogDir, s.Logging.Dir)
	assert.Empty(t, s.Processing.From)
	assert.Empty(t, s.Processing.Subject)
	assert.False(t, s.Observability.Enabled)
	assert.Equal(t, "prometheus", s.Observability.MetricsExporter)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "auth: [not: a: mapping")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse configuration file")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing credentials filename",
			content: `
auth:
  token_filename: token.json
  scopes: [scope]
`,
			wantErr: "auth.credentials_filename",
		},
		{
			name: "missing token filename",
			content: `
auth:
  credentials_filename: credentials.json
  scopes: [scope]
`,
			wantErr: "auth.token_filename",
		},
		{
			name: "no scopes",
			content: `
auth:
  credentials_filename: credentials.json
  token_filename: token.json
`,
			wantErr: "auth.scopes",
		},
		{
			name: "negative lookback",
			content: `
auth:
  credentials_filename: credentials.json
  token_filename: token.json
  scopes: [scope]
gmail:
  n_days: -1
`,
			wantErr: "gmail.n_days",
		},
		{
			name: "negative poll interval",
			content: `
auth:
  credentials_filename: credentials.json
  token_filename: token.json
  scopes: [scope]
gmail:
  poll_interval: -5
`,
			wantErr: "gmail.poll_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
