package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hendrikb/gmailops/internal/config"
)

// writeTestAccount lays down an account directory with a client secret but
// no token, the state an account is in before 'gmailops auth' has run.
func writeTestAccount(t *testing.T, root, name string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	creds := `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte(creds), 0o600))
}

// setupCommandGlobals points the package-level config and logger at a temp
// root and restores everything when the test finishes.
func setupCommandGlobals(t *testing.T, root string) {
	t.Helper()
	prevCfg, prevLogger, prevAccount := cfg, logger, accountFlag
	t.Cleanup(func() { cfg, logger, accountFlag = prevCfg, prevLogger, prevAccount })

	cfg = config.Default()
	cfg.Root = root
	cfg.OutputDir = filepath.Join(root, "mail")
	cfg.LogDir = filepath.Join(root, "logs")
	cfg.StatePath = filepath.Join(root, "state.json")
	logger = slog.New(slog.DiscardHandler)
	accountFlag = ""
}

func TestFetchExplicitAccountMissingTokenFails(t *testing.T) {
	root := t.TempDir()
	writeTestAccount(t, root, "billing@example.com")
	setupCommandGlobals(t, root)
	accountFlag = "billing@example.com"

	err := fetchCmd.RunE(fetchCmd, nil)
	require.Error(t, err, "a selected account without a token must fail the command")
	assert.Contains(t, err.Error(), "gmailops auth")
}

func TestFetchAllAccountsFailingFails(t *testing.T) {
	root := t.TempDir()
	writeTestAccount(t, root, "billing@example.com")
	writeTestAccount(t, root, "office@example.com")
	setupCommandGlobals(t, root)

	err := fetchCmd.RunE(fetchCmd, nil)
	require.Error(t, err, "a run where no account succeeds must not exit 0")
	assert.Contains(t, err.Error(), "all 2 account(s)")
}
