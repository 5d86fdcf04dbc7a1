package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	UI          UIConfig          `mapstructure:"ui"`
	Sync        SyncConfig        `mapstructure:"sync"`
	Categorizer CategorizerConfig `mapstructure:"categorizer"`
	Alerts      AlertsConfig      `mapstructure:"alerts"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat     string `mapstructure:"date_format"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string `mapstructure:"timezone"`
}

// SyncConfig controls inbox ingestion.
type SyncConfig struct {
	InboxPath      string `mapstructure:"inbox_path"`
	MaxCount       int    `mapstructure:"max_count"`
	Schedule       string `mapstructure:"schedule"`
	DefaultAccount string `mapstructure:"default_account"`
}

// CategorizerConfig points at an optional keyword table replacing the built-in one.
type CategorizerConfig struct {
	RulesPath string `mapstructure:"rules_path"`
}

// AlertsConfig controls alert notification generation.
type AlertsConfig struct {
	DedupeNotifications bool `mapstructure:"dedupe_notifications"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Location resolves the configured timezone, falling back to UTC when it is unknown.
func (c UIConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "moneytrail", "moneytrail.db"))
	v.SetDefault("ui.date_format", "02 Jan 2006")
	v.SetDefault("ui.currency_symbol", "₹")
	v.SetDefault("ui.timezone", "Asia/Kolkata")
	v.SetDefault("sync.inbox_path", filepath.Join(os.Getenv("HOME"), ".local", "share", "moneytrail", "inbox.json"))
	v.SetDefault("sync.max_count", 200)
	v.SetDefault("sync.schedule", "0 */2 * * *")
	v.SetDefault("sync.default_account", "default")
	v.SetDefault("categorizer.rules_path", "")
	v.SetDefault("alerts.dedupe_notifications", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Path returns the config file location: $MONEYTRAIL_CONFIG or ~/.config/moneytrail/config.toml.
func Path() string {
	if p := os.Getenv("MONEYTRAIL_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "moneytrail", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix MONEYTRAIL_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("MONEYTRAIL_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "moneytrail"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MONEYTRAIL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Sync.MaxCount <= 0 {
		c.Sync.MaxCount = 200
	}
	return c, nil
}

// Save writes cfg to Path, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("sync.inbox_path", cfg.Sync.InboxPath)
	v.Set("sync.max_count", cfg.Sync.MaxCount)
	v.Set("sync.schedule", cfg.Sync.Schedule)
	v.Set("sync.default_account", cfg.Sync.DefaultAccount)
	v.Set("categorizer.rules_path", cfg.Categorizer.RulesPath)
	v.Set("alerts.dedupe_notifications", cfg.Alerts.DedupeNotifications)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.json", cfg.Log.JSON)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
