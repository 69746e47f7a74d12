package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	State     StateConfig     `yaml:"state"`
	Sources   SourcesConfig   `yaml:"sources"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig is optional; leaving host empty runs without Postgres.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type StateConfig struct {
	Dir string `yaml:"dir"`
}

// SourcesConfig locates the preset files. Each entry is a local path or an
// http(s) URL.
type SourcesConfig struct {
	Programs     string        `yaml:"programs"`
	Library      string        `yaml:"library"`
	Workbooks    []string      `yaml:"workbooks"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

type DefaultsConfig struct {
	Units       string `yaml:"units"`
	RestSeconds int    `yaml:"rest_seconds"`
	Split       string `yaml:"split"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Enabled reports whether a Postgres database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
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
// Env vars use the prefix REPBOOK_ and underscore-separated paths:
//
//	REPBOOK_SERVER_HOST, REPBOOK_SERVER_PORT,
//	REPBOOK_DB_HOST, REPBOOK_DB_PORT, REPBOOK_DB_NAME,
//	REPBOOK_DB_USER, REPBOOK_DB_PASSWORD, REPBOOK_DB_SSLMODE,
//	REPBOOK_STATE_DIR, REPBOOK_PROGRAMS_SOURCE, REPBOOK_LIBRARY_SOURCE,
//	REPBOOK_UNITS
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
	if v := os.Getenv("REPBOOK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPBOOK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPBOOK_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPBOOK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPBOOK_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPBOOK_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPBOOK_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPBOOK_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPBOOK_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv("REPBOOK_PROGRAMS_SOURCE"); v != "" {
		cfg.Sources.Programs = v
	}
	if v := os.Getenv("REPBOOK_LIBRARY_SOURCE"); v != "" {
		cfg.Sources.Library = v
	}
	if v := os.Getenv("REPBOOK_UNITS"); v != "" {
		cfg.Defaults.Units = v
	}
}

func (c *Config) applyDefaults() {
	if c.State.Dir == "" {
		c.State.Dir = "data"
	}
	if c.Sources.FetchTimeout == 0 {
		c.Sources.FetchTimeout = 10 * time.Second
	}
	if c.Defaults.Units == "" {
		c.Defaults.Units = "imperial"
	}
	if c.Defaults.RestSeconds == 0 {
		c.Defaults.RestSeconds = 90
	}
	if c.Defaults.Split == "" {
		c.Defaults.Split = "UpperLower"
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "repbook"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Defaults.Units != "metric" && c.Defaults.Units != "imperial" {
		return fmt.Errorf("defaults.units must be metric or imperial, got %q", c.Defaults.Units)
	}
	if !c.Database.Enabled() {
		return nil
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required when database.host is set")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required when database.host is set")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required when database.host is set")
	}
	return nil
}
