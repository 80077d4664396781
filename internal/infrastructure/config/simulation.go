package config

import "time"

// SimulationConfig holds worker pacing and station lifecycle settings
type SimulationConfig struct {
	// Nominal time to build one unit at 100% efficiency, before time-scale compression
	Baseline time.Duration `mapstructure:"baseline" validate:"min=1ms"`

	// Jitter seed; 0 derives a seed from the clock and process id
	Seed int64 `mapstructure:"seed"`

	// Keep the leased station when the worker exits instead of returning it to the pool
	KeepStationOnExit bool `mapstructure:"keep_station_on_exit"`

	// Upper bound on store calls finished after a shutdown signal (last report, slot release)
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace" validate:"min=1ms"`
}

// RunnerConfig holds replenishment runner settings
type RunnerConfig struct {
	// Reference interval between ticks, before time-scale compression
	Interval time.Duration `mapstructure:"interval" validate:"min=1ms"`

	// PID file guarding against a second runner on the same host
	PIDFile string `mapstructure:"pid_file" validate:"required"`
}
