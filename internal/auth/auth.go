// Package auth provides Google OAuth2 authentication for gmailops.
//
// Each account directory carries its own credentials.json and token.json.
// Tokens are refreshed automatically on use and written back to disk so
// the next invocation starts with a valid access token.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hendrikb/gmailops/internal/account"
)

// Scopes requested from Google. Fetch needs readonly, send/drafts need
// compose and send, trash needs modify.
var Scopes = []string{
	gmail.GmailReadonlyScope,
	gmail.GmailSendScope,
	gmail.GmailComposeScope,
	gmail.GmailModifyScope,
}

// LoadService returns an authenticated Gmail API service for the account.
// It fails with a remediation hint when credentials or token are missing.
func LoadService(ctx context.Context, acct account.Account) (*gmail.Service, error) {
	client, err := getClient(ctx, acct)
	if err != nil {
		return nil, err
	}
	return gmail.NewService(ctx, option.WithHTTPClient(client))
}

// getClient returns an authenticated HTTP client, refreshing and
// persisting the token when needed.
func getClient(ctx context.Context, acct account.Account) (*http.Client, error) {
	config, err := loadOAuthConfig(acct.CredentialsPath)
	if err != nil {
		return nil, err
	}

	token, err := LoadToken(acct.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("load token for %s: %w (run 'gmailops auth --account %s' to authorize)",
			acct.Name, err, acct.Name)
	}

	ts := config.TokenSource(ctx, token)
	newToken, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token for %s: %w (run 'gmailops auth --account %s' to re-authorize)",
			acct.Name, err, acct.Name)
	}

	// Persist the refreshed token so the next run skips the refresh.
	if newToken.AccessToken != token.AccessToken {
		if saveErr := SaveToken(acct.TokenPath, newToken); saveErr != nil {
			// Non-fatal: log but don't fail.
			fmt.Fprintf(os.Stderr, "warning: could not save refreshed token: %v\n", saveErr)
		}
	}

	return oauth2.NewClient(ctx, ts), nil
}

// loadOAuthConfig reads credentials.json and returns an OAuth2 config
// with the loopback redirect fixed to the consent listener port.
func loadOAuthConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials from %s: %w (download the OAuth client secret from the Google Cloud console)",
			credentialsPath, err)
	}

	config, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	config.RedirectURL = redirectURL

	return config, nil
}

// LoadToken reads a token.json file into an oauth2.Token.
func LoadToken(tokenPath string) (*oauth2.Token, error) {
	f, err := os.Open(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}
	return token, nil
}

// SaveToken writes a token.json file, replacing any previous one.
func SaveToken(tokenPath string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tokenPath, data, 0o600)
}
