package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tverberg/gmailpoll/internal/config"
	"github.com/tverberg/gmailpoll/internal/instrumentation"
	"github.com/tverberg/gmailpoll/internal/logging"
)

// Manager owns the token file and produces authenticated HTTP clients.
// The poll loop never touches tokens directly, only the client built here.
type Manager struct {
	credentialsFile string
	tokenFile       string
	scopes          []string
	authorizer      Authorizer
	logger          *slog.Logger
	metrics         *instrumentation.Metrics
}

// NewManager builds a credential manager from the auth settings. metrics
// may be a zero-value recorder when instrumentation is disabled.
func NewManager(auth config.Auth, authorizer Authorizer, logger *slog.Logger, metrics *instrumentation.Metrics) *Manager {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Manager{
		credentialsFile: auth.CredentialsFilename,
		tokenFile:       auth.TokenFilename,
		scopes:          auth.Scopes,
		authorizer:      authorizer,
		logger:          logger,
		metrics:         metrics,
	}
}

// Client returns an HTTP client carrying a valid bearer token, running
// the refresh or interactive flow as needed. The token backing the
// client is persisted to the token file before the client is built.
func (m *Manager) Client(ctx context.Context) (*http.Client, error) {
	conf, err := m.oauthConfig()
	if err != nil {
		return nil, err
	}

	tok, err := m.currentToken(ctx, conf)
	if err != nil {
		return nil, err
	}

	return conf.Client(ctx, tok), nil
}

// Authenticate forces a fresh interactive authorization and persists the
// resulting token, replacing any existing one.
func (m *Manager) Authenticate(ctx context.Context) error {
	conf, err := m.oauthConfig()
	if err != nil {
		return err
	}
	_, err = m.interactive(ctx, conf)
	return err
}

// oauthConfig parses the client-secret file into an oauth2 config bound
// to the configured scopes.
func (m *Manager) oauthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(m.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("OAuth client secret file not found at %s: %w", m.credentialsFile, err)
	}
	conf, err := google.ConfigFromJSON(data, m.scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file %s: %w", m.credentialsFile, err)
	}
	return conf, nil
}

// currentToken resolves a valid token: a persisted unexpired token is
// used as-is, an expired one with a refresh token is refreshed silently,
// and anything else falls through to the interactive flow. Refresh
// failures also fall back to interactive re-authorization.
func (m *Manager) currentToken(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	tok, err := m.loadToken()
	if err != nil {
		m.logger.Info("no usable token file, starting interactive authorization",
			slog.String("token_file", m.tokenFile))
		return m.interactive(ctx, conf)
	}

	if tok.Valid() {
		return tok, nil
	}

	if tok.RefreshToken != "" {
		m.logger.Info("refreshing expired token")
		refreshed, err := conf.TokenSource(ctx, tok).Token()
		if err == nil {
			m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.ResultSuccess)
			if err := m.saveToken(refreshed); err != nil {
				return nil, err
			}
			return refreshed, nil
		}
		m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.ResultFailure)
		m.logger.Warn("token refresh failed, falling back to interactive authorization", logging.Err(err))
	}

	return m.interactive(ctx, conf)
}

// interactive runs the consent flow and persists the token before
// returning it.
func (m *Manager) interactive(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	m.logger.Info("starting OAuth flow, a browser window will open")
	tok, err := m.authorizer.Authorize(ctx, conf)
	if err != nil {
		m.metrics.RecordOAuthAuth(ctx, instrumentation.ResultFailure)
		return nil, fmt.Errorf("interactive authorization failed: %w", err)
	}
	m.metrics.RecordOAuthAuth(ctx, instrumentation.ResultSuccess)

	if err := m.saveToken(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func (m *Manager) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(m.tokenFile)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", m.tokenFile, err)
	}
	return tok, nil
}

func (m *Manager) saveToken(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to serialize token: %w", err)
	}
	if err := os.WriteFile(m.tokenFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", m.tokenFile, err)
	}
	m.logger.Info("token saved", slog.String("token_file", m.tokenFile))
	return nil
}
