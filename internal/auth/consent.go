package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/hendrikb/gmailops/internal/account"
)

const (
	// The redirect URI registered with the OAuth client. The port is fixed;
	// a second concurrent consent flow will fail to bind and error out.
	listenAddr  = "127.0.0.1:8765"
	redirectURL = "http://" + listenAddr + "/callback"

	// How long the loopback listener waits for the browser redirect.
	consentWindow = 5 * time.Minute
)

// Authorize runs the interactive consent flow for an account: prints the
// consent URL, waits on a loopback listener for the redirect, exchanges
// the code and writes token.json.
func Authorize(ctx context.Context, acct account.Account) (*oauth2.Token, error) {
	config, err := loadOAuthConfig(acct.CredentialsPath)
	if err != nil {
		return nil, err
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w (is another auth flow running?)", listenAddr, err)
	}
	defer ln.Close()

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callback{err: errors.New("oauth state mismatch")}
			return
		}
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, "authorization denied", http.StatusBadRequest)
			results <- callback{err: fmt.Errorf("authorization denied: %s", errMsg)}
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this tab and return to the terminal.")
		results <- callback{code: q.Get("code")}
	})

	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Close()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open the following URL in your browser to authorize %s:\n\n  %s\n\n", acct.Name, authURL)
	fmt.Printf("Waiting up to %s for the redirect on %s ...\n", consentWindow, listenAddr)

	var code string
	select {
	case cb := <-results:
		if cb.err != nil {
			return nil, cb.err
		}
		code = cb.code
	case <-time.After(consentWindow):
		return nil, fmt.Errorf("timed out after %s waiting for authorization", consentWindow)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := SaveToken(acct.TokenPath, token); err != nil {
		return nil, fmt.Errorf("save token to %s: %w", acct.TokenPath, err)
	}
	return token, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
