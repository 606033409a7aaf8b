// Package config loads the optional gmailops.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the toolkit settings. All fields have working defaults so
// the file is optional; flags override whatever the file sets.
type Config struct {
	// Root is the directory scanned for account directories.
	Root string `yaml:"root"`
	// OutputDir is where fetched emails are written.
	OutputDir string `yaml:"output_dir"`
	// LogDir is where run summaries and forward audit logs land.
	LogDir string `yaml:"log_dir"`
	// StatePath is the sync-state JSON file.
	StatePath string `yaml:"state_path"`
	// ForwardTo is the processing inbox for invoice forwarding.
	ForwardTo string `yaml:"forward_to"`
	// MaxResults caps list calls when no --max flag is given.
	MaxResults int64 `yaml:"max_results"`

	Logging Logging `yaml:"logging"`
}

// Logging configures the slog setup.
type Logging struct {
	// Level: debug, info, warn or error.
	Level string `yaml:"level"`
	// Format: text, json or pretty.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Root:       ".",
		OutputDir:  "mail",
		LogDir:     ".gmailops",
		StatePath:  ".gmailops/state.json",
		MaxResults: 100,
		Logging:    Logging{Level: "info", Format: "text"},
	}
}

// Load reads a YAML config file on top of the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json", "pretty":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}
	if c.ForwardTo != "" && !strings.Contains(c.ForwardTo, "@") {
		return fmt.Errorf("forward_to %q is not an email address", c.ForwardTo)
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must not be negative")
	}
	return nil
}
