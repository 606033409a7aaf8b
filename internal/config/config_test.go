package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "gmailops.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "mail", cfg.OutputDir)
	assert.Equal(t, int64(100), cfg.MaxResults)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gmailops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
root: /data/accounts
forward_to: invoices@processing.example
max_results: 25
logging:
  level: debug
  format: pretty
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/accounts", cfg.Root)
	assert.Equal(t, "invoices@processing.example", cfg.ForwardTo)
	assert.Equal(t, int64(25), cfg.MaxResults)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "pretty", cfg.Logging.Format)
	// Untouched fields keep their defaults.
	assert.Equal(t, "mail", cfg.OutputDir)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"bad forward address", "forward_to: not-an-address\n"},
		{"negative max", "max_results: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "gmailops.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gmailops.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
