// Package config loads trainset settings from an optional YAML file, then
// .env files, then environment variables (env always wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"trainset/internal/logger"
)

// Config is the full application configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir" env:"TRAINSET_DATA_DIR"`
	Settings SettingsConfig `yaml:"settings"`
	Drop     DropConfig     `yaml:"drop"`
	Theme    ThemeConfig    `yaml:"theme"`
	Log      logger.Config  `yaml:"log"`
}

// SettingsConfig selects where the persisted theme setting lives.
type SettingsConfig struct {
	// Driver is one of sqlite, postgres, mysql, mongo, memory.
	Driver   string `yaml:"driver" env:"TRAINSET_SETTINGS_DRIVER"`
	Path     string `yaml:"path" env:"TRAINSET_SETTINGS_PATH"` // sqlite file
	Host     string `yaml:"host" env:"TRAINSET_SETTINGS_HOST"`
	Port     int    `yaml:"port" env:"TRAINSET_SETTINGS_PORT"`
	Database string `yaml:"database" env:"TRAINSET_SETTINGS_DATABASE"`
	Username string `yaml:"username" env:"TRAINSET_SETTINGS_USERNAME"`
	Password string `yaml:"password" env:"TRAINSET_SETTINGS_PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" env:"TRAINSET_SETTINGS_SSLMODE"`
	URI      string `yaml:"uri" env:"TRAINSET_SETTINGS_URI"` // mongo
	// WatchSchedule is the cron spec used to poll for external changes.
	WatchSchedule string `yaml:"watch_schedule" env:"TRAINSET_SETTINGS_WATCH"`
}

// DropConfig controls the drop-folder watcher.
type DropConfig struct {
	Dir      string `yaml:"dir" env:"TRAINSET_DROP_DIR"`
	MaxBytes int64  `yaml:"max_bytes" env:"TRAINSET_DROP_MAX_BYTES"`
	Disabled bool   `yaml:"disabled" env:"TRAINSET_DROP_DISABLED"`
}

// ThemeConfig carries the host used for domain-based theme selection when
// there is no browser document (desktop and MCP modes).
type ThemeConfig struct {
	Host string `yaml:"host" env:"TRAINSET_THEME_HOST"`
}

const (
	DefaultSettingsDriver = "sqlite"
	DefaultWatchSchedule  = "@every 2s"
	DefaultDropMaxBytes   = 50 << 20
)

// Load reads path (missing file means defaults), loads .env files and
// applies env overrides and defaults.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)
	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns TRAINSET_CONFIG or ~/.config/trainset/config.yml.
func DefaultPath() string {
	if p := os.Getenv("TRAINSET_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(home, ".config", "trainset", "config.yml")
}

func (c *Config) setDefaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, ".local", "share", "trainset")
	}
	if c.Settings.Driver == "" {
		c.Settings.Driver = DefaultSettingsDriver
	}
	if c.Settings.Driver == "sqlite" && c.Settings.Path == "" {
		c.Settings.Path = filepath.Join(c.DataDir, "trainset.db")
	}
	if c.Settings.WatchSchedule == "" {
		c.Settings.WatchSchedule = DefaultWatchSchedule
	}
	if c.Drop.Dir == "" {
		c.Drop.Dir = filepath.Join(c.DataDir, "drop")
	}
	if c.Drop.MaxBytes <= 0 {
		c.Drop.MaxBytes = DefaultDropMaxBytes
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// Missing files are fine.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
