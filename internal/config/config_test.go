package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "STOCK_PROVIDER", "STOCK_GATEWAY_URL",
		"STOCK_GATEWAY_API_KEY", "STOCK_WATCHLIST", "BATCH_INVESTMENT", "SQLITE_PATH",
		"DATABASE_URL", "HTTPS_PROXY", "CONFIG_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.Provider != ProviderPublic {
		t.Errorf("expected public provider, got %s", cfg.DataSource.Provider)
	}
	if cfg.Batch.Watchlist != "stocks.txt" || cfg.Batch.Days != 30 || cfg.Batch.Investment != "10000" {
		t.Errorf("unexpected batch defaults: %+v", cfg.Batch)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled by default")
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `data_source:
  base_url: http://gateway.local
  api_key: from-file
batch:
  days: 90
  investment: "5000"
  cron: "0 30 15 * * 1-5"
database:
  sqlite_path: data/history.db
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STOCK_GATEWAY_API_KEY", "from-env")
	t.Setenv("BATCH_INVESTMENT", "20000.50")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataSource.Provider != ProviderGateway {
		t.Errorf("base_url should select the gateway, got %s", cfg.DataSource.Provider)
	}
	if cfg.DataSource.APIKey != "from-env" {
		t.Errorf("env should override file, got %s", cfg.DataSource.APIKey)
	}
	inv, err := cfg.Investment()
	if err != nil || inv.String() != "20000.5" {
		t.Errorf("unexpected investment %s (%v)", inv, err)
	}
	if cfg.Batch.Days != 90 || cfg.Database.SQLitePath != "data/history.db" {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("batch: [unclosed"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"gateway without url", func(c *Config) { c.DataSource.Provider = ProviderGateway }, "base_url"},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "provider"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }, "telegram"},
		{"bad investment", func(c *Config) { c.Batch.Investment = "lots" }, "investment"},
		{"negative investment", func(c *Config) { c.Batch.Investment = "-1" }, "negative"},
		{"bad cron", func(c *Config) { c.Batch.Cron = "0 9 * * 1" }, "batch.cron"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := Load(filepath.Join(t.TempDir(), "none.yaml"))
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "STOCKLENS_DOTENV_PROBE"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=mock\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv(key); got != "mock" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	if Path() != DefaultPath {
		t.Errorf("expected %s, got %s", DefaultPath, Path())
	}
	t.Setenv("CONFIG_PATH", "/etc/stocklens.yaml")
	if Path() != "/etc/stocklens.yaml" {
		t.Errorf("unexpected path %s", Path())
	}
}
