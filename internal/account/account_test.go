package account

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "billing@example.com", "credentials.json"))
	touch(t, filepath.Join(root, "archive@example.com", "credentials.json"))
	// No credentials: skipped.
	if err := os.MkdirAll(filepath.Join(root, "empty@example.com"), 0o755); err != nil {
		t.Fatal(err)
	}
	// Not an email-shaped name: skipped.
	touch(t, filepath.Join(root, "notes", "credentials.json"))

	accounts := Discover(root)
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}
	if accounts[0].Name != "archive@example.com" || accounts[1].Name != "billing@example.com" {
		t.Errorf("accounts not sorted by name: %s, %s", accounts[0].Name, accounts[1].Name)
	}
	want := filepath.Join(root, "archive@example.com", "token.json")
	if accounts[0].TokenPath != want {
		t.Errorf("TokenPath = %s, want %s", accounts[0].TokenPath, want)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if got := Discover(filepath.Join(t.TempDir(), "nope")); got != nil {
		t.Errorf("Discover on missing root = %v, want nil", got)
	}
}

func TestHasToken(t *testing.T) {
	root := t.TempDir()
	acct := At(root, "billing@example.com")
	if acct.HasToken() {
		t.Error("HasToken() before any token exists")
	}
	touch(t, acct.TokenPath)
	if !acct.HasToken() {
		t.Error("HasToken() after writing token.json")
	}
}
