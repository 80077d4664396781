package config

import "time"

// MetricsConfig holds metrics collection and exposure configuration
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled"`

	// Port for the HTTP metrics server; workers on one host need distinct ports
	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	// Host to bind the metrics HTTP server
	Host string `mapstructure:"host"`

	// Path for the metrics endpoint
	Path string `mapstructure:"path" validate:"omitempty,startswith=/"`

	// How often station occupancy gauges are refreshed from the store
	SampleInterval time.Duration `mapstructure:"sample_interval"`
}
