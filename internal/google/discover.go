package google

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrClientSecretNotFound reports that no client-secret file could be
// located, neither at the configured path nor in the downloads folder.
// This failure is recoverable: the caller logs it and continues, and the
// later authentication step fails fast on the still-missing file.
var ErrClientSecretNotFound = errors.New("client secret file not found")

// clientSecretPattern matches the file names the Google Cloud Console
// uses for downloaded OAuth client credentials.
const clientSecretPattern = "client_secret*.json"

// DefaultDownloadsDir returns the user's Downloads directory.
func DefaultDownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Downloads")
}

// EnsureClientSecret makes sure a client-secret file exists at
// credentialsPath. When the file is absent it scans downloadsDir for
// client_secret*.json files, picks the most recently modified one and
// copies it to credentialsPath. Returns ErrClientSecretNotFound when no
// candidate exists.
func EnsureClientSecret(credentialsPath, downloadsDir string, logger *slog.Logger) error {
	if _, err := os.Stat(credentialsPath); err == nil {
		return nil
	}

	logger.Info("client secret file missing, scanning downloads folder",
		slog.String("path", credentialsPath),
		slog.String("downloads_dir", downloadsDir))

	latest, err := latestClientSecret(downloadsDir)
	if err != nil {
		return err
	}

	if err := copyFile(latest, credentialsPath); err != nil {
		return fmt.Errorf("failed to copy client secret into place: %w", err)
	}

	logger.Info("copied client secret from downloads folder",
		slog.String("source", latest),
		slog.String("path", credentialsPath))
	return nil
}

// latestClientSecret returns the most recently modified client-secret
// candidate in dir.
func latestClientSecret(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, clientSecretPattern))
	if err != nil || len(matches) == 0 {
		return "", ErrClientSecretNotFound
	}

	latest := ""
	var latestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().UnixNano() > latestMod {
			latest = m
			latestMod = info.ModTime().UnixNano()
		}
	}
	if latest == "" {
		return "", ErrClientSecretNotFound
	}
	return latest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
