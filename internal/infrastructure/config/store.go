package config

import "time"

// Store backends.
const (
	// BackendGorm runs the coordination queries through gorm on postgres or sqlite
	BackendGorm = "gorm"

	// BackendProcedures calls the PostgreSQL stored functions through pgx
	BackendProcedures = "procedures"
)

// StoreConfig selects and tunes the coordination store client
type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=gorm procedures"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	Retry RetryConfig `mapstructure:"retry"`
}

// RateLimitConfig holds rate limiting configuration for store calls
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig holds retry configuration for transient store failures
type RetryConfig struct {
	// Total attempts per idempotent call, including the first; 1 disables retry
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=1,max=10"`

	// Base duration for exponential backoff
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}
