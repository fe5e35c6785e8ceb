// Package config provides functionality for loading, saving, and managing
// application configuration settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"bloglist/local-app/src/pkg/model"
)

// DefaultPath is where the configuration file lives unless overridden.
const DefaultPath = "./data/config.yaml"

// Environment variables that override file settings.
const (
	EnvAPIURL     = "BLOGLIST_API_URL"
	EnvStorageDir = "BLOGLIST_STORAGE_DIR"
	EnvLogLevel   = "BLOGLIST_LOG_LEVEL"
)

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *model.Config {
	return &model.Config{
		APIBaseURL:          "http://localhost:3003",
		RequestTimeout:      10 * time.Second,
		NotificationTimeout: 5 * time.Second,
		SortByLikes:         true,
		StorageDriver:       "sqlite3",
		StorageDir:          "./data",
		StorageFile:         "bloglist.db",
		LogFolder:           "./logs",
		CommandLog:          "commands.log",
		ErrorLog:            "errors.log",
		InfoLog:             "info.log",
		LogLevel:            "info",
		HistoryFile:         "./data/history",
		UseColor:            true,
	}
}

// ConfigLoad loads the configuration from the YAML file at path.
// If the file doesn't exist, it creates it with the default configuration.
// Environment overrides are applied after reading and never written back.
func ConfigLoad(path string) (*model.Config, error) {
	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := ConfigSave(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Missing keys keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// ConfigSave saves the provided configuration to the YAML file at path.
func ConfigSave(path string, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *model.Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvStorageDir); v != "" {
		cfg.StorageDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks the settings the client cannot run without.
func Validate(cfg *model.Config) error {
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid api_base_url %q: %w", cfg.APIBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q: expected http(s)://host", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.NotificationTimeout <= 0 {
		return fmt.Errorf("notification_timeout must be positive, got %s", cfg.NotificationTimeout)
	}
	switch cfg.StorageDriver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unsupported storage_driver: %s", cfg.StorageDriver)
	}
	return nil
}
