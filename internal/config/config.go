// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	// Server
	Port            string        `env:"PORT" envDefault:"3001"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	StaticDir       string        `env:"STATIC_DIR"`

	// Storage
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`

	MongoURI            string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase       string        `env:"MONGODB_DATABASE" envDefault:"kanban"`
	MongoConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"5s"`
	MongoMaxPoolSize    uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"10"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/kanban.db"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	// LogFile, when set, also writes logs to a rotated file.
	LogFile string `env:"LOG_FILE"`

	// CORS
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000,http://localhost:5000"`

	// Rate limiting per client IP; 0 disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"0"`
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q: want mongo, sqlite or memory", c.StoreDriver)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.ShutdownTimeout <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT and REQUEST_TIMEOUT must be positive")
	}
	if c.StoreDriver == DriverMongo && c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required for the mongo driver")
	}
	if c.StoreDriver == DriverSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
