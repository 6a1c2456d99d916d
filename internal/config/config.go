// Package config handles loading and saving the CLI configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultAPIBaseURL is the production Robinhood API endpoint.
const DefaultAPIBaseURL = "https://api.robinhood.com"

// Config holds the CLI configuration.
type Config struct {
	Username   string `yaml:"username"`
	APIBaseURL string `yaml:"api_base_url"`
	// DeviceToken identifies this installation to the login endpoint.
	// Generated on first login and reused so 2FA challenges are not
	// re-issued on every run.
	DeviceToken string `yaml:"device_token"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL: DefaultAPIBaseURL,
	}
}

// Load reads the config file at the given path.
// A missing file is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}

	return cfg, nil
}

// Save writes the config file with 0600 permissions, creating parent
// directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/rh.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ConfigDir returns the directory holding the config file and the
// persisted state blobs (tokens, instrument cache, watchlist).
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rh")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rh")
}
