// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Validation errors returned by Validate.
var (
	ErrMissingSecretKey  = errors.New("SECRET_KEY must not be empty")
	ErrInvalidTokenTTL   = errors.New("ACCESS_TOKEN_TTL must be a positive duration")
	ErrInvalidHashParams = errors.New("argon2 cost parameters must be positive")
	ErrIncompleteOAuth   = errors.New("google oauth requires client id, client secret and redirect url together")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing secret and lifetime. Both are required; the process
	// refuses to start with an empty secret or a non-positive TTL.
	SecretKey      string        `env:"SECRET_KEY,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL,required"`

	// Argon2id cost parameters for password hashing.
	HashTime    uint32 `env:"HASH_TIME_COST" envDefault:"3"`
	HashMemory  uint32 `env:"HASH_MEMORY_KB" envDefault:"65536"`
	HashThreads uint8  `env:"HASH_THREADS" envDefault:"4"`

	// Google OAuth. All three must be set for the /auth/google routes
	// to be mounted; leaving them empty disables OAuth login.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID" envDefault:""`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET" envDefault:""`
	OAuthRedirectURL   string `env:"OAUTH_REDIRECT_URL" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// OAuthEnabled reports whether Google OAuth login is configured.
func (c *Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.OAuthRedirectURL != ""
}

// Validate checks invariants that env parsing alone cannot express.
// Called once at startup; the process must not run with a failing config.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.AccessTokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}
	if c.HashTime == 0 || c.HashMemory == 0 || c.HashThreads == 0 {
		return ErrInvalidHashParams
	}
	oauthSet := c.GoogleClientID != "" || c.GoogleClientSecret != "" || c.OAuthRedirectURL != ""
	if oauthSet && !c.OAuthEnabled() {
		return ErrIncompleteOAuth
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
