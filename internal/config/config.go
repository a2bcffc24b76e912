package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the routine store. Driver defaults to postgres.
type StorageConfig struct {
	Driver    string `yaml:"driver"`
	SQLiteDir string `yaml:"sqlite_dir"`
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

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
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

// SlogLevel maps the configured level name to a slog level. Empty means info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FITLOG_ and underscore-separated paths:
//
//	FITLOG_SERVER_HOST, FITLOG_SERVER_PORT,
//	FITLOG_STORAGE_DRIVER, FITLOG_STORAGE_SQLITE_DIR,
//	FITLOG_DB_HOST, FITLOG_DB_PORT, FITLOG_DB_NAME,
//	FITLOG_DB_USER, FITLOG_DB_PASSWORD, FITLOG_DB_SSLMODE,
//	FITLOG_AUTH_API_KEY,
//	FITLOG_TAILSCALE_ENABLED, FITLOG_TAILSCALE_HOSTNAME, FITLOG_TAILSCALE_STATE_DIR,
//	FITLOG_LOG_LEVEL
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
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverPostgres
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	strs := map[string]*string{
		"FITLOG_SERVER_HOST":         &cfg.Server.Host,
		"FITLOG_STORAGE_DRIVER":      &cfg.Storage.Driver,
		"FITLOG_STORAGE_SQLITE_DIR":  &cfg.Storage.SQLiteDir,
		"FITLOG_DB_HOST":             &cfg.Database.Host,
		"FITLOG_DB_NAME":             &cfg.Database.Name,
		"FITLOG_DB_USER":             &cfg.Database.User,
		"FITLOG_DB_PASSWORD":         &cfg.Database.Password,
		"FITLOG_DB_SSLMODE":          &cfg.Database.SSLMode,
		"FITLOG_AUTH_API_KEY":        &cfg.Auth.APIKey,
		"FITLOG_TAILSCALE_HOSTNAME":  &cfg.Tailscale.Hostname,
		"FITLOG_TAILSCALE_STATE_DIR": &cfg.Tailscale.StateDir,
		"FITLOG_LOG_LEVEL":           &cfg.Log.Level,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FITLOG_SERVER_PORT": &cfg.Server.Port,
		"FITLOG_DB_PORT":     &cfg.Database.Port,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	if v := os.Getenv("FITLOG_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Storage.Driver {
	case DriverPostgres:
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
	case DriverSQLite:
		if c.Storage.SQLiteDir == "" {
			return fmt.Errorf("storage.sqlite_dir is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of %s, %s", c.Storage.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
