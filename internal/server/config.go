// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the chat service.
package server

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

const (
	defaultPort            = ":8080"
	defaultAllowedOrigins  = "http://localhost:8080"
	defaultMaxMessageSize  = 4096
	defaultBurst           = 5
	defaultRefillInterval  = time.Second
	defaultSendBufferSize  = 256
	defaultLogLevel        = "INFO"
	defaultShutdownTimeout = 10 * time.Second
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int           `env:"RATE_LIMIT_BURST,default=5"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
}

// Config holds the server configuration settings including security controls.
type Config struct {
	Port            string        `env:"SERVER_PORT,default=:8080"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`
	MaxMessageSize  int           `env:"MAX_MESSAGE_SIZE,default=4096"`
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE,default=256"`
	SingleRoom      bool          `env:"SINGLE_ROOM,default=false"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	RateLimit       RateLimitConfig
}

// DefaultConfig returns a Config populated with default values for all settings.
func DefaultConfig() Config {
	return Config{
		Port:            defaultPort,
		AllowedOrigins:  defaultAllowedOrigins,
		MaxMessageSize:  defaultMaxMessageSize,
		SendBufferSize:  defaultSendBufferSize,
		LogLevel:        defaultLogLevel,
		ShutdownTimeout: defaultShutdownTimeout,
		RateLimit: RateLimitConfig{
			Burst:          defaultBurst,
			RefillInterval: defaultRefillInterval,
		},
	}
}

// LoadConfig reads the configuration from environment variables. Values
// that are missing fall back to defaults and non-positive values are
// sanitized back to defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg.Sanitize(), nil
}

// Sanitize replaces unusable values with defaults.
func (c Config) Sanitize() Config {
	if strings.TrimSpace(c.Port) == "" {
		c.Port = defaultPort
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = defaultSendBufferSize
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = defaultBurst
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = defaultRefillInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	return c
}

// Origins splits AllowedOrigins into its trimmed entries.
func (c Config) Origins() []string {
	if strings.TrimSpace(c.AllowedOrigins) == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
