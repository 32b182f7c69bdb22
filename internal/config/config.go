// ABOUTME: fitsync configuration management with backend selection.
// ABOUTME: Handles API server, logging, timeouts, and the local store factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/fitsync/internal/kvstore"
	"github.com/harperreed/fitsync/internal/storage"
)

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendCharm  = "charm"

	// CharmDBName is the Charm KV database name used by the charm backend.
	CharmDBName = "fitsync"

	DefaultTimeout = 30 * time.Second
)

// Config stores fitsync configuration.
type Config struct {
	// Backend selects the local store: "sqlite" (default), "badger", or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for local data.
	// SQLite puts fitsync.db here, badger uses a badger/ subdirectory.
	// Supports ~ expansion. Defaults to ~/.local/share/fitsync.
	DataDir string `json:"data_dir,omitempty"`

	// Server is the API base URL.
	Server string `json:"server,omitempty"`

	LogLevel string `json:"log_level,omitempty"`

	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel returns the configured log level, defaulting to "warn".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "warn"
	}
	return c.LogLevel
}

// Timeout returns the HTTP timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the local store for the configured backend.
func (c *Config) OpenStorage(logger *log.Logger) (storage.Store, error) {
	dataDir := c.GetDataDir()

	switch backend := c.GetBackend(); backend {
	case BackendSQLite:
		return storage.Open(filepath.Join(dataDir, "fitsync.db"))
	case BackendBadger:
		return kvstore.OpenBadger(filepath.Join(dataDir, "badger"), logger)
	case BackendCharm:
		return kvstore.OpenCharm(CharmDBName, logger)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// ConfigDir returns the XDG config directory for fitsync.
func ConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "fitsync")
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
