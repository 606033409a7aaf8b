// Package account describes configured Gmail accounts.
//
// An account is a directory named after its email address containing a
// credentials.json (OAuth client secret) and, after authorization, a
// token.json. The descriptor itself is immutable; the address Gmail
// actually reports for the token is resolved separately via the profile
// endpoint and joined by account name.
package account

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Account is an immutable descriptor for one configured Gmail account.
type Account struct {
	// Name is the directory name, conventionally the email address.
	Name string `json:"name"`
	// CredentialsPath points to the OAuth client secret file.
	CredentialsPath string `json:"credentials_path"`
	// TokenPath points to the stored OAuth token.
	TokenPath string `json:"token_path"`
}

// Identity is the address and mailbox stats the Gmail profile endpoint
// reports for an authorized account. It is resolved lazily and never
// written back into the Account descriptor.
type Identity struct {
	Email         string `json:"email"`
	MessagesTotal int64  `json:"messages_total,omitempty"`
	ThreadsTotal  int64  `json:"threads_total,omitempty"`
}

// At builds the descriptor for an account directory under root.
func At(root, name string) Account {
	dir := filepath.Join(root, name)
	return Account{
		Name:            name,
		CredentialsPath: filepath.Join(dir, "credentials.json"),
		TokenPath:       filepath.Join(dir, "token.json"),
	}
}

// Discover finds accounts by scanning root for directories that look like
// email addresses and contain a credentials.json. Results are sorted by name.
func Discover(root string) []Account {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var accounts []Account
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.Contains(name, "@") {
			continue
		}
		acct := At(root, name)
		if _, err := os.Stat(acct.CredentialsPath); err == nil {
			accounts = append(accounts, acct)
		}
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts
}

// HasToken reports whether the account has a stored token.
func (a Account) HasToken() bool {
	_, err := os.Stat(a.TokenPath)
	return err == nil
}
