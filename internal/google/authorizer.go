package google

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"golang.org/x/oauth2"
)

// Authorizer obtains a token through the provider's consent flow. It is
// an interface so tests can swap the browser round trip for a canned
// token.
type Authorizer interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// LoopbackAuthorizer runs the installed-app OAuth flow against a local
// loopback listener. It prints the consent URL, waits for the redirect
// carrying the authorization code and exchanges it for a token.
type LoopbackAuthorizer struct {
	// Out receives the consent URL prompt. Defaults to os.Stdout.
	Out io.Writer
}

func (a *LoopbackAuthorizer) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

// Authorize blocks until the user completes consent in a browser or ctx
// is cancelled.
func (a *LoopbackAuthorizer) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open loopback listener: %w", err)
	}
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port

	// The redirect target must match what the code exchange sends, so
	// work on a copy bound to the ephemeral port.
	loopbackConf := *conf
	loopbackConf.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/callback", port)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, "authorization error: "+errMsg, http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("authorization denied: %s", errMsg):
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "no authorization code in request", http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("redirect carried no authorization code"):
			default:
			}
			return
		}
		_, _ = io.WriteString(w, "Authentication complete. You can close this window and return to the terminal.\n")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	authURL := loopbackConf.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(a.out(), "Open the following URL in your browser and grant access:\n%s\n", authURL)

	select {
	case code := <-codeCh:
		tok, err := loopbackConf.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
