package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Upstream predictions API (the Django backend)
	UpstreamBaseURL         string        `mapstructure:"UPSTREAM_BASE_URL"`
	UpstreamTimeout         time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`
	UpstreamRateLimit       int           `mapstructure:"UPSTREAM_RATE_LIMIT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Leaderboard cache
	LeaderboardCacheTTL time.Duration `mapstructure:"LEADERBOARD_CACHE_TTL"`

	// Background refresh
	EnableBackgroundRefresh bool   `mapstructure:"ENABLE_BACKGROUND_REFRESH"`
	RefreshCronSpec         string `mapstructure:"REFRESH_CRON_SPEC"`

	// What-if sessions
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("UPSTREAM_BASE_URL", "http://localhost:8000")
	viper.SetDefault("UPSTREAM_TIMEOUT", "10s")
	viper.SetDefault("UPSTREAM_RATE_LIMIT", 10) // requests per second
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	viper.SetDefault("LEADERBOARD_CACHE_TTL", "5m")
	viper.SetDefault("ENABLE_BACKGROUND_REFRESH", true)
	viper.SetDefault("REFRESH_CRON_SPEC", "*/5 * * * *")
	viper.SetDefault("SESSION_IDLE_TIMEOUT", "30m")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
