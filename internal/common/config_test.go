package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CNSTOCK_CONFIG", "CNSTOCK_HOST", "CNSTOCK_PORT",
		"CNSTOCK_LOG_LEVEL", "CNSTOCK_CACHE_DIR", "CNSTOCK_DATA_DIR",
		"XDG_DATA_HOME",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:8081" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
	if got := cfg.Cache.GetMemTTL(); got != time.Hour {
		t.Errorf("GetMemTTL() = %v, want 1h", got)
	}
	if got := cfg.Cache.GetDiskTTL(); got != 24*time.Hour {
		t.Errorf("GetDiskTTL() = %v, want 24h", got)
	}
	if got := cfg.Clients.Eastmoney.GetTimeout(); got != 30*time.Second {
		t.Errorf("eastmoney timeout = %v, want 30s", got)
	}
	if cfg.Clients.Xueqiu.RateLimit != 5 {
		t.Errorf("xueqiu rate limit = %d, want 5", cfg.Clients.Xueqiu.RateLimit)
	}
}

func TestDurationFallbacks(t *testing.T) {
	cache := CacheConfig{MemTTL: "bogus", DiskTTL: ""}
	if got := cache.GetMemTTL(); got != time.Hour {
		t.Errorf("GetMemTTL() with bad value = %v, want 1h", got)
	}
	if got := cache.GetDiskTTL(); got != 24*time.Hour {
		t.Errorf("GetDiskTTL() with bad value = %v, want 24h", got)
	}

	client := ClientConfig{Timeout: "not-a-duration"}
	if got := client.GetTimeout(); got != 30*time.Second {
		t.Errorf("GetTimeout() with bad value = %v, want 30s", got)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
host = "127.0.0.1"
port = 9000

[logging]
level = "debug"

[cache]
enabled = false
dir = "/tmp/cnstock-test-cache"

[clients.sina]
timeout = "5s"
rate_limit = 2
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by the file")
	}
	if cfg.Cache.Dir != "/tmp/cnstock-test-cache" {
		t.Errorf("cache dir = %q", cfg.Cache.Dir)
	}
	if got := cfg.Clients.Sina.GetTimeout(); got != 5*time.Second {
		t.Errorf("sina timeout = %v, want 5s", got)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Clients.Eastmoney.RateLimit != 10 {
		t.Errorf("eastmoney rate limit = %d, want default 10", cfg.Clients.Eastmoney.RateLimit)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CNSTOCK_HOST", "10.0.0.1")
	t.Setenv("CNSTOCK_PORT", "7777")
	t.Setenv("CNSTOCK_LOG_LEVEL", "warn")
	t.Setenv("CNSTOCK_CACHE_DIR", "/tmp/cnstock-env-cache")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Host != "10.0.0.1" {
		t.Errorf("host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Cache.Dir != "/tmp/cnstock-env-cache" {
		t.Errorf("cache dir = %q", cfg.Cache.Dir)
	}
}

func TestLoadConfigInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("CNSTOCK_PORT", "not-a-port")

	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error for invalid CNSTOCK_PORT")
	}
}

func TestLoadConfigDefaultCacheDir(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()
	t.Setenv("CNSTOCK_DATA_DIR", dataDir)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dataDir, "cache"); cfg.Cache.Dir != want {
		t.Errorf("cache dir = %q, want %q", cfg.Cache.Dir, want)
	}
}

func TestDataDirPrecedence(t *testing.T) {
	clearEnv(t)

	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	dir, err := DataDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg/data", "cnstock"); dir != want {
		t.Errorf("DataDir() = %q, want %q", dir, want)
	}

	t.Setenv("CNSTOCK_DATA_DIR", "/explicit/data")
	dir, err = DataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/explicit/data" {
		t.Errorf("DataDir() = %q, want /explicit/data", dir)
	}
}
