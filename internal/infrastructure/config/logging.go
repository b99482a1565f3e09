package config

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Log format: text, json, logfmt
	Format string `mapstructure:"format" validate:"required,oneof=json text logfmt"`

	// Output destination: stdout, stderr, file
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`

	// File path (required if output is "file")
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// Include caller information (file:line)
	IncludeCaller bool `mapstructure:"include_caller"`

	// Prefix printed before every line
	Prefix string `mapstructure:"prefix"`
}
