package cmd

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tverberg/gmailpoll/internal/config"
	"github.com/tverberg/gmailpoll/internal/google"
	"github.com/tverberg/gmailpoll/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Run the interactive OAuth flow and save a fresh token",
		Long: `Force a full interactive authorization: open the consent URL in a
browser, wait for the redirect on a local loopback port and persist the
resulting token, replacing any existing one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(cfgFile)
			if err != nil {
				slog.Error("failed to load configuration", logging.Err(err))
				return err
			}

			logger, closeLogs, err := logging.Setup(settings.Logging.Dir, slog.LevelInfo)
			if err != nil {
				slog.Error("failed to set up logging", logging.Err(err))
				return err
			}
			defer func() { _ = closeLogs() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := google.EnsureClientSecret(settings.Auth.CredentialsFilename, google.DefaultDownloadsDir(), logger); err != nil {
				if errors.Is(err, google.ErrClientSecretNotFound) {
					logger.Error("client_secret JSON not found in downloads folder", logging.Err(err))
					logger.Error("download your OAuth client JSON from the Google Cloud Console")
				} else {
					logger.Error("unexpected error during credential import", logging.Err(err))
				}
			}

			manager := google.NewManager(settings.Auth, &google.LoopbackAuthorizer{}, logger, nil)
			if err := manager.Authenticate(ctx); err != nil {
				logger.Error("authorization failed", logging.Err(err))
				return err
			}

			logger.Info("authorization complete", slog.String("token_file", settings.Auth.TokenFilename))
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "config.yaml", "Configuration file")
	return cmd
}
