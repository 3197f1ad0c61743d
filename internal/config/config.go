package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"StockLens/internal/watchlist"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Providers accepted in data_source.provider.
const (
	ProviderGateway = "gateway"
	ProviderPublic  = "public"
	ProviderMock    = "mock"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Batch struct {
		Watchlist  string `yaml:"watchlist"`
		Days       int    `yaml:"days"`
		Investment string `yaml:"investment"`
		Cron       string `yaml:"cron"`
	} `yaml:"batch"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Path returns CONFIG_PATH or DefaultPath.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// LoadDotEnv loads variables from .env files into the environment without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	overrides := []struct {
		env string
		dst *string
	}{
		{"TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID},
		{"STOCK_PROVIDER", &cfg.DataSource.Provider},
		{"STOCK_GATEWAY_URL", &cfg.DataSource.BaseURL},
		{"STOCK_GATEWAY_API_KEY", &cfg.DataSource.APIKey},
		{"STOCK_WATCHLIST", &cfg.Batch.Watchlist},
		{"BATCH_INVESTMENT", &cfg.Batch.Investment},
		{"SQLITE_PATH", &cfg.Database.SQLitePath},
		{"DATABASE_URL", &cfg.Database.DatabaseURL},
		{"HTTPS_PROXY", &cfg.Proxy},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = ProviderGateway
		} else {
			cfg.DataSource.Provider = ProviderPublic
		}
	}
	if cfg.Batch.Watchlist == "" {
		cfg.Batch.Watchlist = watchlist.DefaultFile
	}
	if cfg.Batch.Days == 0 {
		cfg.Batch.Days = 30
	}
	if cfg.Batch.Investment == "" {
		cfg.Batch.Investment = "10000"
	}

	return cfg, nil
}

// Investment parses batch.investment.
func (c *Config) Investment() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.Batch.Investment)
	if err != nil {
		return decimal.Zero, fmt.Errorf("batch.investment %q: %w", c.Batch.Investment, err)
	}
	return d, nil
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderGateway:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the gateway provider")
		}
	case ProviderPublic, ProviderMock:
	default:
		return fmt.Errorf("data_source.provider %q is not one of gateway, public, mock", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Batch.Days < 0 {
		return fmt.Errorf("batch.days must not be negative")
	}
	inv, err := c.Investment()
	if err != nil {
		return err
	}
	if inv.IsNegative() {
		return fmt.Errorf("batch.investment must not be negative")
	}
	if c.Batch.Cron != "" {
		if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.Batch.Cron); err != nil {
			return fmt.Errorf("batch.cron: %w", err)
		}
	}
	return nil
}
