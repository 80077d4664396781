package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "kanban"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "kanban"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "kanban.db"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Store defaults
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendGorm
	}
	if cfg.Store.RateLimit.Requests == 0 {
		cfg.Store.RateLimit.Requests = 50
	}
	if cfg.Store.RateLimit.Burst == 0 {
		cfg.Store.RateLimit.Burst = 50
	}
	if cfg.Store.Retry.MaxAttempts == 0 {
		cfg.Store.Retry.MaxAttempts = 3
	}
	if cfg.Store.Retry.BackoffBase == 0 {
		cfg.Store.Retry.BackoffBase = 200 * time.Millisecond
	}

	// Simulation defaults
	if cfg.Simulation.Baseline == 0 {
		cfg.Simulation.Baseline = 60 * time.Second
	}
	if cfg.Simulation.ShutdownGrace == 0 {
		cfg.Simulation.ShutdownGrace = 5 * time.Second
	}

	// Runner defaults
	if cfg.Runner.Interval == 0 {
		cfg.Runner.Interval = 300 * time.Second
	}
	if cfg.Runner.PIDFile == "" {
		cfg.Runner.PIDFile = "/tmp/kanban-runner.pid"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9102
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.SampleInterval == 0 {
		cfg.Metrics.SampleInterval = 15 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}
