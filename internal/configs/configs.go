package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	AppHost                string `toml:"app_host" env:"APP_HOST"`
	AppPort                string `toml:"app_port" env:"APP_PORT"`
	StorageDriver          string `toml:"storage_driver" env:"STORAGE_DRIVER"`
	StorageKey             string `toml:"storage_key" env:"STORAGE_KEY"`
	DatabaseDSN            string `toml:"database_dsn" env:"DATABASE_DSN"`
	RedisHost              string `toml:"redis_host" env:"REDIS_HOST"`
	RedisPort              string `toml:"redis_port" env:"REDIS_PORT"`
	OptimisticLocking      bool   `toml:"optimistic_locking" env:"OPTIMISTIC_LOCKING"`
	RateLimit              int    `toml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds" env:"SHUTDOWN_TIMEOUT_SECONDS"`
	LogLevel               string `toml:"log_level" env:"LOG_LEVEL"`
}

func Default() Config {
	return Config{
		AppHost:                "127.0.0.1",
		AppPort:                "8080",
		StorageDriver:          DriverSQLite,
		StorageKey:             "tasks",
		DatabaseDSN:            "tasks.db",
		RedisHost:              "127.0.0.1",
		RedisPort:              "6379",
		RateLimit:              60,
		ShutdownTimeoutSeconds: 20,
		LogLevel:               "info",
	}
}

// Load layers defaults, then the optional TOML file at path, then environment
// variables. An empty path falls back to CONFIG_FILE.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) AppURL() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c Config) Validate() error {
	if c.AppHost == "" || c.AppPort == "" {
		return errors.New("APP_HOST and APP_PORT must not be empty (e.g. 127.0.0.1:8080)")
	}
	if c.StorageKey == "" {
		return errors.New("STORAGE_KEY must not be empty")
	}
	switch c.StorageDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN must not be empty")
		}
	case DriverRedis:
		if c.RedisHost == "" || c.RedisPort == "" {
			return errors.New("REDIS_HOST and REDIS_PORT must not be empty")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of memory, sqlite, redis (got %q)", c.StorageDriver)
	}
	if c.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	return nil
}
