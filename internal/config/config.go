package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Stats       StatsConfig     `yaml:"stats"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Logging     LoggingConfig   `yaml:"logging"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
	MaxIdle        int    `yaml:"max_idle"`
}

// StatsConfig points the main service at the statistics collaborator.
// App is the application name recorded with every hit.
type StatsConfig struct {
	URL string `yaml:"url"`
	App string `yaml:"app"`
}

type RateLimitConfig struct {
	PublicPerMinute int `yaml:"public_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdle:        getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		},
		Stats: StatsConfig{
			URL: getEnv("STATS_SERVER_URL", "http://localhost:9090"),
			App: getEnv("STATS_APP_NAME", "main-service"),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: getEnvInt("RATE_LIMIT_PUBLIC", 60),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// LoadFile overlays values from a YAML config file on top of cfg.
// Zero values in the file leave the corresponding field untouched.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	merge(&cfg.Server.Host, overlay.Server.Host)
	mergeInt(&cfg.Server.Port, overlay.Server.Port)
	merge(&cfg.Server.BaseURL, overlay.Server.BaseURL)
	merge(&cfg.Database.URL, overlay.Database.URL)
	mergeInt(&cfg.Database.MaxConnections, overlay.Database.MaxConnections)
	mergeInt(&cfg.Database.MaxIdle, overlay.Database.MaxIdle)
	merge(&cfg.Stats.URL, overlay.Stats.URL)
	merge(&cfg.Stats.App, overlay.Stats.App)
	mergeInt(&cfg.RateLimit.PublicPerMinute, overlay.RateLimit.PublicPerMinute)
	merge(&cfg.Logging.Level, overlay.Logging.Level)
	merge(&cfg.Logging.Format, overlay.Logging.Format)
	merge(&cfg.Environment, overlay.Environment)
	return cfg, nil
}

func merge(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func mergeInt(dst *int, value int) {
	if value != 0 {
		*dst = value
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
