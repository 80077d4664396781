package config

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Log format: json, console
	Format string `mapstructure:"format" validate:"required,oneof=json console"`

	// Output destination: stdout, stderr
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr"`

	// Also write process log lines to the process_logs table
	Persist bool `mapstructure:"persist"`

	// Include caller information (file:line)
	IncludeCaller bool `mapstructure:"include_caller"`
}
