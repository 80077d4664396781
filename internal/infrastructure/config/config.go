package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Store      StoreConfig      `mapstructure:"store"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Runner     RunnerConfig     `mapstructure:"runner"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (kanban.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("kanban")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/kanban")
	}

	v.SetEnvPrefix("KANBAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DATABASE_URL is honoured without the KANBAN_ prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys registers every key so AutomaticEnv can fill values that
// appear in no config file. Viper only consults the environment for keys
// it already knows about when unmarshalling.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"database.type", "database.url", "database.host", "database.port",
		"database.user", "database.password", "database.name", "database.sslmode",
		"database.path", "database.pool.max_open", "database.pool.max_idle",
		"database.pool.max_lifetime",
		"store.backend", "store.retry.max_attempts", "store.retry.backoff_base",
		"store.rate_limit.requests", "store.rate_limit.burst",
		"simulation.baseline", "simulation.seed", "simulation.keep_station_on_exit",
		"simulation.shutdown_grace",
		"runner.interval", "runner.pid_file",
		"metrics.enabled", "metrics.host", "metrics.port", "metrics.path",
		"metrics.sample_interval",
		"logging.level", "logging.format", "logging.output", "logging.persist",
		"logging.include_caller",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// LoadConfigOrDefault loads configuration or returns a default config on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}
