// Package config provides YAML-based configuration loading for VibeTracker.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level VibeTracker configuration, loaded from config.yaml.
type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Auth        AuthConfig     `yaml:"auth"`
	DB          DBConfig       `yaml:"db"`
	Reminders   ReminderConfig `yaml:"reminders"`
	CatalogPath string         `yaml:"catalog_path"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// AuthConfig holds token-verification settings. The secret may also come
// from the VIBETRACKER_JWT_SECRET environment variable, which wins over the
// file so deployments never need the secret on disk.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// DBConfig selects and configures the storage backend. The sqlite driver
// needs only Path; the mysql driver uses the connection fields.
type DBConfig struct {
	Driver   string `yaml:"driver"` // sqlite or mysql
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// ReminderConfig controls the due-reminder dispatcher.
type ReminderConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Schedule string        `yaml:"schedule"` // 5-field cron expression
	Notifier string        `yaml:"notifier"` // log, discord, or slack
	Discord  DiscordConfig `yaml:"discord"`
	Slack    SlackConfig   `yaml:"slack"`
}

// DiscordConfig holds bot credentials for Discord reminder delivery.
type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// SlackConfig holds bot credentials for Slack reminder delivery.
type SlackConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays secrets from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("VIBETRACKER_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("VIBETRACKER_DB_PATH"); v != "" {
		c.DB.Path = v
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:5173"}
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.Path == "" {
		c.DB.Path = "vibetracker.db"
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.User == "" {
		c.DB.User = "root"
	}
	if c.DB.Database == "" {
		c.DB.Database = "vibetracker"
	}
	if c.Reminders.Schedule == "" {
		c.Reminders.Schedule = "*/5 * * * *"
	}
	if c.Reminders.Notifier == "" {
		c.Reminders.Notifier = "log"
	}
	if c.CatalogPath == "" {
		c.CatalogPath = "steps.json"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Auth.JWTSecret == "" {
		errs = append(errs, "auth.jwt_secret is required (or set VIBETRACKER_JWT_SECRET)")
	}
	switch c.DB.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("db.driver %q is not supported (sqlite or mysql)", c.DB.Driver))
	}
	switch c.Reminders.Notifier {
	case "log":
	case "discord":
		if c.Reminders.Enabled && (c.Reminders.Discord.Token == "" || c.Reminders.Discord.ChannelID == "") {
			errs = append(errs, "reminders.discord.token and channel_id are required for the discord notifier")
		}
	case "slack":
		if c.Reminders.Enabled && (c.Reminders.Slack.Token == "" || c.Reminders.Slack.Channel == "") {
			errs = append(errs, "reminders.slack.token and channel are required for the slack notifier")
		}
	default:
		errs = append(errs, fmt.Sprintf("reminders.notifier %q is not supported (log, discord, or slack)", c.Reminders.Notifier))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
