package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for cnstock.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Cache   CacheConfig   `toml:"cache"`
	Clients ClientsConfig `toml:"clients"`
}

// ServerConfig holds the streamable-HTTP transport configuration.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// CacheConfig holds the pass-through table cache configuration.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	MemTTL  string `toml:"mem_ttl"`
	DiskTTL string `toml:"disk_ttl"`
}

// GetMemTTL parses and returns the memory cache TTL.
func (c *CacheConfig) GetMemTTL() time.Duration {
	d, err := time.ParseDuration(c.MemTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// GetDiskTTL parses and returns the disk cache TTL.
func (c *CacheConfig) GetDiskTTL() time.Duration {
	d, err := time.ParseDuration(c.DiskTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// ClientsConfig holds upstream data-source client configurations.
type ClientsConfig struct {
	Eastmoney ClientConfig `toml:"eastmoney"`
	Sina      ClientConfig `toml:"sina"`
	Xueqiu    ClientConfig `toml:"xueqiu"`
}

// ClientConfig holds configuration shared by all upstream clients.
type ClientConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"`
}

// GetTimeout parses and returns the HTTP timeout duration.
func (c *ClientConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8081,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Cache: CacheConfig{
			Enabled: true,
			MemTTL:  "1h",
			DiskTTL: "24h",
		},
		Clients: ClientsConfig{
			Eastmoney: ClientConfig{Timeout: "30s", RateLimit: 10},
			Sina:      ClientConfig{Timeout: "30s", RateLimit: 10},
			Xueqiu:    ClientConfig{Timeout: "30s", RateLimit: 5},
		},
	}
}

// DataDir returns the base data directory for cnstock, used for the disk
// cache when no explicit cache dir is configured:
// - $CNSTOCK_DATA_DIR (full override)
// - $XDG_DATA_HOME/cnstock
// - ~/.local/share/cnstock (fallback)
func DataDir() (string, error) {
	if dir := os.Getenv("CNSTOCK_DATA_DIR"); dir != "" {
		return dir, nil
	}

	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "cnstock"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "cnstock"), nil
}

// LoadConfig loads configuration from the given TOML file path. An empty
// path falls back to $CNSTOCK_CONFIG; if neither names a file, defaults are
// used. Environment variables override both file and default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("CNSTOCK_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if cfg.Cache.Dir == "" {
		dataDir, err := DataDir()
		if err != nil {
			return nil, err
		}
		cfg.Cache.Dir = filepath.Join(dataDir, "cache")
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	if val, ok := os.LookupEnv("CNSTOCK_HOST"); ok {
		cfg.Server.Host = val
	}

	if val, ok := os.LookupEnv("CNSTOCK_PORT"); ok {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid CNSTOCK_PORT: %w", err)
		}
		cfg.Server.Port = parsed
	}

	if val, ok := os.LookupEnv("CNSTOCK_LOG_LEVEL"); ok {
		cfg.Logging.Level = val
	}

	if val, ok := os.LookupEnv("CNSTOCK_CACHE_DIR"); ok {
		cfg.Cache.Dir = val
	}

	return nil
}
