package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Coach     CoachConfig     `yaml:"coach"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig controls the optional tsnet listener. When enabled the
// API is served on the tailnet instead of a plain TCP port.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// CoachConfig points at the AI coach proxy. An empty base URL disables
// the coach endpoints.
type CoachConfig struct {
	BaseURL  string `yaml:"base_url"`
	Provider string `yaml:"provider"`
}

// SnapshotConfig controls the widget snapshot store and its refresher.
type SnapshotConfig struct {
	Path               string  `yaml:"path"`
	RefreshIntervalSec int     `yaml:"refresh_interval_sec"`
	WaterGoalOz        float64 `yaml:"water_goal_oz"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FITLINK_ and underscore-separated paths:
//
//	FITLINK_SERVER_HOST, FITLINK_SERVER_PORT,
//	FITLINK_DB_HOST, FITLINK_DB_PORT, FITLINK_DB_NAME,
//	FITLINK_DB_USER, FITLINK_DB_PASSWORD, FITLINK_DB_SSLMODE,
//	FITLINK_AUTH_API_KEY, FITLINK_TAILSCALE_HOSTNAME,
//	FITLINK_COACH_BASE_URL, FITLINK_SNAPSHOT_PATH
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FITLINK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FITLINK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FITLINK_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("FITLINK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("FITLINK_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FITLINK_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("FITLINK_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FITLINK_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("FITLINK_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("FITLINK_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("FITLINK_COACH_BASE_URL"); v != "" {
		cfg.Coach.BaseURL = v
	}
	if v := os.Getenv("FITLINK_SNAPSHOT_PATH"); v != "" {
		cfg.Snapshot.Path = v
	}
}

func (c *Config) applyDefaults() {
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "fitlink"
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = "./data"
	}
	if c.Snapshot.RefreshIntervalSec == 0 {
		c.Snapshot.RefreshIntervalSec = 300
	}
	if c.Snapshot.WaterGoalOz == 0 {
		c.Snapshot.WaterGoalOz = 64
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Snapshot.RefreshIntervalSec < 0 {
		return fmt.Errorf("snapshot.refresh_interval_sec must be positive")
	}
	return nil
}
