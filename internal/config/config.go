// Package config loads application configuration from jobhunt.yml, with
// environment variables layered on top.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// DatabaseConfig selects the backing database.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AuthConfig toggles API key enforcement.
type AuthConfig struct {
	Required bool `mapstructure:"required"`
}

// RateLimitConfig configures request throttling. With a RedisURL the limit
// is shared across instances; without one each instance counts on its own.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	RedisURL string        `mapstructure:"redis_url"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads jobhunt.yml (or .yaml) from the working directory, applies
// defaults, and layers JOBHUNT_* environment variables on top. A missing
// config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("database.url", "sqlite:jobhunt.sqlite3")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8000)
	v.SetDefault("auth.required", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.redis_url", "")

	v.SetConfigName("jobhunt")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("JOBHUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// DATABASE_URL wins over everything for compatibility with hosting
	// platforms that inject it.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return nil, fmt.Errorf("rate limit requests and window must be positive")
	}

	return &config, nil
}
