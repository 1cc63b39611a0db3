package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tverberg/gmailpoll/internal/config"
	"github.com/tverberg/gmailpoll/internal/gmail"
	"github.com/tverberg/gmailpoll/internal/google"
	"github.com/tverberg/gmailpoll/internal/instrumentation"
	"github.com/tverberg/gmailpoll/internal/logging"
	"github.com/tverberg/gmailpoll/internal/server"
)

func newPollCmd() *cobra.Command {
	var (
		cfgFile     string
		watch       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Fetch unread messages matching the configured filters and mark them read",
		Long: `Run a poll pass against Gmail: build a search query from the configured
sender/subject/date filters, fetch every matching unread message, extract
its body, mark it read and log a summary. Each pass ends with the
configured sleep. With --watch, passes repeat until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(cfgFile)
			if err != nil {
				slog.Error("failed to load configuration", logging.Err(err))
				return err
			}
			if metricsAddr != "" {
				settings.Observability.MetricsAddr = metricsAddr
				settings.Observability.Enabled = true
			}

			logger, closeLogs, err := logging.Setup(settings.Logging.Dir, slog.LevelInfo)
			if err != nil {
				slog.Error("failed to set up logging", logging.Err(err))
				return err
			}
			defer func() { _ = closeLogs() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			provider, err := instrumentation.NewProvider(ctx, observabilityConfig(settings.Observability))
			if err != nil {
				logger.Error("failed to initialize instrumentation", logging.Err(err))
				return err
			}
			defer func() { _ = provider.Shutdown(context.Background()) }()

			if provider.Enabled() {
				metricsSrv, err := server.NewMetricsServer(server.MetricsServerConfig{
					Addr:     settings.Observability.MetricsAddr,
					Provider: provider,
				}, logger)
				if err != nil {
					logger.Error("failed to create metrics server", logging.Err(err))
					return err
				}
				go func() {
					if err := metricsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server failed", logging.Err(err))
					}
				}()
				defer func() { _ = metricsSrv.Shutdown(context.Background()) }()
			}

			poller, err := buildPoller(ctx, settings, logger, provider)
			if err != nil {
				return err
			}

			for {
				if err := poller.Run(ctx); err != nil {
					if ctx.Err() != nil {
						logger.Info("poller interrupted, shutting down")
						return nil
					}
					return err
				}
				if !watch {
					return nil
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "config.yaml", "Configuration file")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep polling until interrupted instead of running a single pass")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Enable the metrics endpoint on this address (e.g. \":9090\")")
	return cmd
}

// buildPoller wires the credential manager, Gmail client and poller from
// the loaded settings.
func buildPoller(ctx context.Context, settings config.Settings, logger *slog.Logger, provider *instrumentation.Provider) (*gmail.Poller, error) {
	logger.Info("initializing gmail authentication")

	// Missing client secret is recoverable here: the authentication
	// step below fails fast on the still-missing file.
	if err := google.EnsureClientSecret(settings.Auth.CredentialsFilename, google.DefaultDownloadsDir(), logger); err != nil {
		if errors.Is(err, google.ErrClientSecretNotFound) {
			logger.Error("client_secret JSON not found in downloads folder", logging.Err(err))
			logger.Error("download your OAuth client JSON from the Google Cloud Console")
		} else {
			logger.Error("unexpected error during credential import", logging.Err(err))
		}
	}

	manager := google.NewManager(settings.Auth, &google.LoopbackAuthorizer{}, logger, provider.Metrics())
	httpClient, err := manager.Client(ctx)
	if err != nil {
		logger.Error("gmail authentication failed", logging.Err(err))
		return nil, err
	}
	logger.Info("completed gmail authentication")

	client, err := gmail.NewClient(ctx, httpClient, provider.Metrics())
	if err != nil {
		logger.Error("failed to create gmail client", logging.Err(err))
		return nil, err
	}

	return gmail.NewPoller(client, settings.Gmail, settings.Processing, logger, provider.Metrics(), provider.Tracer("gmailpoll")), nil
}

// observabilityConfig maps the settings section onto the
// instrumentation config.
func observabilityConfig(obs config.Observability) instrumentation.Config {
	cfg := instrumentation.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Enabled = obs.Enabled
	if obs.MetricsExporter != "" {
		cfg.MetricsExporter = obs.MetricsExporter
	}
	if obs.TracesExporter != "" {
		cfg.TracesExporter = obs.TracesExporter
	}
	cfg.OTLPEndpoint = obs.OTLPEndpoint
	cfg.OTLPInsecure = obs.OTLPInsecure
	return cfg
}
