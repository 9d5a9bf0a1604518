// Package config assembles the startup configuration shared by the server and
// the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tropicaldog17/folio/internal/db"
)

// EnvConfigPath names the environment variable holding the YAML config path.
const EnvConfigPath = "FOLIO_CONFIG"

// Config is the explicit startup configuration
type Config struct {
	Database db.Config    `yaml:"database"`
	Server   ServerConfig `yaml:"server"`
	Feeds    FeedConfig   `yaml:"feeds"`
	Log      LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port string `yaml:"port"`
}

// FeedConfig configures the external price feeds. Timeout applies to every
// outbound call.
type FeedConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	EquityBaseURL string        `yaml:"equity_base_url"`
	CryptoBaseURL string        `yaml:"crypto_base_url"`
}

// LogConfig configures zap
type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: db.DefaultConfig(),
		Server:   ServerConfig{Port: "8080"},
		Feeds: FeedConfig{
			Timeout:       15 * time.Second,
			EquityBaseURL: "https://query1.finance.yahoo.com",
			CryptoBaseURL: "https://api.coingecko.com/api/v3",
		},
		Log: LogConfig{Env: "development"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// (or $FOLIO_CONFIG), a .env file in the working directory, and finally the
// process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// a missing .env is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Path, "DB_PATH")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSL_MODE")
	setString(&c.Server.Port, "SERVER_PORT")
	setString(&c.Feeds.EquityBaseURL, "EQUITY_FEED_URL")
	setString(&c.Feeds.CryptoBaseURL, "CRYPTO_FEED_URL")
	setString(&c.Log.Env, "APP_ENV")
	setString(&c.Log.Env, "LOG_ENV")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("FEED_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FEED_TIMEOUT %q: %w", v, err)
		}
		c.Feeds.Timeout = d
	}
	return nil
}

// Validate rejects configurations the application cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == db.DriverSQLite && c.Database.Path == "" {
		return errors.New("database path is required for sqlite")
	}
	if c.Feeds.Timeout <= 0 {
		return fmt.Errorf("feed timeout must be positive, got %s", c.Feeds.Timeout)
	}
	if c.Feeds.EquityBaseURL == "" || c.Feeds.CryptoBaseURL == "" {
		return errors.New("feed base URLs are required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
