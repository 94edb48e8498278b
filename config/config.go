package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	Port string

	// Database configuration
	DatabaseURL string

	// Redis configuration (risk counters and rate limits)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret string

	// Wallet defaults
	StartingBalance float64 // opening balance for newly provisioned wallets, in naira

	// Large-win alerting (optional; disabled when token or channel is empty)
	DiscordToken          string
	DiscordAlertChannelID string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		Port:        os.Getenv("PORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		DiscordToken:          os.Getenv("DISCORD_TOKEN"),
		DiscordAlertChannelID: os.Getenv("DISCORD_ALERT_CHANNEL_ID"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.Port == "" {
		config.Port = "8080"
	}
	if config.RedisURL == "" {
		config.RedisURL = "localhost:6379"
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		if parsed, err := strconv.Atoi(db); err == nil {
			config.RedisDB = parsed
		}
	}
	config.StartingBalance = 1000
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseFloat(balance, 64); err == nil {
			config.StartingBalance = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	}

	return config, nil
}
