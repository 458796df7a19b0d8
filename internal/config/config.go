// Package config loads billminder settings from defaults, an optional TOML
// file and BILLMINDER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BILLMINDER_SERVER_ADDR.
const EnvPrefix = "BILLMINDER"

// Config holds application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" toml:"server"`
	Storage   StorageConfig   `mapstructure:"storage" toml:"storage"`
	Bills     BillsConfig     `mapstructure:"bills" toml:"bills"`
	Alerts    AlertsConfig    `mapstructure:"alerts" toml:"alerts"`
	Reminders RemindersConfig `mapstructure:"reminders" toml:"reminders"`
	LLM       LLMConfig       `mapstructure:"llm" toml:"llm"`
	Log       LogConfig       `mapstructure:"log" toml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr    string `mapstructure:"addr" toml:"addr"`
	MCPPath string `mapstructure:"mcp_path" toml:"mcp_path"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is one of "json", "sqlite" or "memory".
	Driver string `mapstructure:"driver" toml:"driver"`
	Path   string `mapstructure:"path" toml:"path"`
}

// BillsConfig holds calendar settings.
type BillsConfig struct {
	// Timezone is an IANA name, or "Local".
	Timezone     string `mapstructure:"timezone" toml:"timezone"`
	UpcomingDays int    `mapstructure:"upcoming_days" toml:"upcoming_days"`
}

// AlertsConfig holds the lookahead windows in days.
type AlertsConfig struct {
	Windows []int `mapstructure:"windows" toml:"windows"`
}

// RemindersConfig controls the periodic alert log. An empty or zero
// interval disables it.
type RemindersConfig struct {
	Interval string `mapstructure:"interval" toml:"interval"`
}

// LLMConfig holds the chat-completions endpoint settings.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url" toml:"base_url"`
	Model       string  `mapstructure:"model" toml:"model"`
	APIKeyEnv   string  `mapstructure:"api_key_env" toml:"api_key_env"`
	APIKey      string  `mapstructure:"api_key" toml:"api_key"`
	Temperature float64 `mapstructure:"temperature" toml:"temperature"`
	MaxSteps    int     `mapstructure:"max_steps" toml:"max_steps"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level" toml:"level"`
	// Format is "text" (colored) or "json".
	Format string `mapstructure:"format" toml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:    ":8080",
			MCPPath: "/mcp",
		},
		Storage: StorageConfig{
			Driver: "json",
			Path:   filepath.Join(DataDir(), "bills_db.json"),
		},
		Bills: BillsConfig{
			Timezone:     "Local",
			UpcomingDays: 7,
		},
		Alerts: AlertsConfig{
			Windows: []int{7, 3, 1},
		},
		LLM: LLMConfig{
			BaseURL:     "http://localhost:11434/v1/",
			Model:       "gemma3:8b",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.2,
			MaxSteps:    6,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "billminder")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "billminder")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "billminder")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "billminder")
}

// Path returns the config file in use: $BILLMINDER_CONFIG or
// config.toml in Dir.
func Path() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.toml")
}

// Load reads configuration from path, or from Path() when path is empty.
// A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("toml")
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mcp_path", d.Server.MCPPath)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("bills.timezone", d.Bills.Timezone)
	v.SetDefault("bills.upcoming_days", d.Bills.UpcomingDays)
	v.SetDefault("alerts.windows", d.Alerts.Windows)
	v.SetDefault("reminders.interval", d.Reminders.Interval)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key_env", d.LLM.APIKeyEnv)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_steps", d.LLM.MaxSteps)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "json", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.driver must be json, sqlite or memory, got %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && c.Storage.Path == "" {
		return errors.New("storage.path is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.ReminderInterval(); err != nil {
		return err
	}
	for _, w := range c.Alerts.Windows {
		if w < 0 {
			return fmt.Errorf("alerts.windows must not be negative, got %d", w)
		}
	}
	return nil
}

// Location resolves bills.timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Bills.Timezone == "" || strings.EqualFold(c.Bills.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Bills.Timezone)
	if err != nil {
		return nil, fmt.Errorf("bills.timezone: %w", err)
	}
	return loc, nil
}

// ReminderInterval parses reminders.interval. Zero means disabled.
func (c Config) ReminderInterval() (time.Duration, error) {
	if strings.TrimSpace(c.Reminders.Interval) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Reminders.Interval)
	if err != nil {
		return 0, fmt.Errorf("reminders.interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("reminders.interval must not be negative, got %s", d)
	}
	return d, nil
}

// APIKey returns the LLM key from the configured env var, then the config.
func (c Config) APIKey() string {
	if c.LLM.APIKeyEnv != "" {
		if key := os.Getenv(c.LLM.APIKeyEnv); key != "" {
			return key
		}
	}
	return c.LLM.APIKey
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Exists reports whether a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
