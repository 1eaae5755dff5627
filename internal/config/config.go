// Package config handles loading and managing arcanum configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the arcanum configuration.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Server ServerConfig `toml:"server"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	DataDir     string `toml:"data_dir"`
	DatabaseURL string `toml:"database_url"` // postgres:// URL or SQLite path; empty means the default SQLite file
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	APIPort      int     `toml:"api_port"`       // HTTP server port (default: 8080)
	APIKey       string  `toml:"api_key"`        // API authentication key; empty disables auth
	RateLimitQPS float64 `toml:"rate_limit_qps"` // Per-server request rate limit (default: 10)
}

// DefaultHome returns the default arcanum home directory.
// Respects ARCANUM_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("ARCANUM_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arcanum"
	}
	return filepath.Join(home, ".arcanum")
}

// Load reads the configuration from the specified file.
// If path is empty, uses the default location (~/.arcanum/config.toml).
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		// Defaults
		Data: DataConfig{
			DataDir: homeDir,
		},
		Server: ServerConfig{
			APIPort:      8080,
			RateLimitQPS: 10,
		},
	}

	// Config file is optional - use defaults if not present
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Data.DataDir = expandPath(cfg.Data.DataDir)

	return cfg, nil
}

// DatabaseURL returns the database DSN: the configured URL when set,
// otherwise the default SQLite file under the data directory.
func (c *Config) DatabaseURL() string {
	if c.Data.DatabaseURL != "" {
		return c.Data.DatabaseURL
	}
	return filepath.Join(c.Data.DataDir, "arcanum.db")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
