package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string `envconfig:"PORT" default:"3000"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Directory served for the browser forms; empty means the embedded assets.
	StaticDir string `envconfig:"STATIC_DIR"`
	// Header whose presence the memory backend requires on writes.
	APIKeyHeader string `envconfig:"API_KEY_HEADER" default:"X-API-Key"`

	Mongo    MongoConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
}

// MongoConfig is read from MONGO_URI, MONGO_DB and MONGO_CONNECT_TIMEOUT.
type MongoConfig struct {
	URI            string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"MONGO_DB" default:"multistore"`
	ConnectTimeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"3s"`
}

// PostgresConfig is read from the POSTGRES_* variables.
type PostgresConfig struct {
	Host            string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port            string `envconfig:"POSTGRES_PORT" default:"5432"`
	User            string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password        string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	Database        string `envconfig:"POSTGRES_DB" default:"multistore"`
	SSLMode         string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	MaxConns        int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
	ConnectAttempts int    `envconfig:"POSTGRES_CONNECT_ATTEMPTS" default:"1"`
}

// DSN returns the lib/pq connection URL.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// SQLiteConfig is read from SQLITE_PATH.
type SQLiteConfig struct {
	Path string `envconfig:"SQLITE_PATH" default:"data/users.db"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// CLIConfig is what the interactive shell needs to reach a running api-service.
type CLIConfig struct {
	BaseURL      string `envconfig:"API_BASE_URL" default:"http://localhost:3000"`
	APIKeyHeader string `envconfig:"API_KEY_HEADER" default:"X-API-Key"`
	APIKey       string `envconfig:"API_KEY" default:"cli"`
	Backend      string `envconfig:"CLI_BACKEND" default:"sqlite"`

	Postgres PostgresConfig
}

// LoadCLI reads the shell's configuration the same way Load does.
func LoadCLI() (*CLIConfig, error) {
	_ = godotenv.Load()

	var cfg CLIConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load cli config: %w", err)
	}
	return &cfg, nil
}
