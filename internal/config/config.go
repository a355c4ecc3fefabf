// Package config handles tool configuration loading and management.
package config

// Config holds all tdstool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Decode  DecodeConfig  `yaml:"decode"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DecodeConfig holds decoder diagnostics settings.
type DecodeConfig struct {
	// Quiet suppresses recoverable decode diagnostics (warnings about
	// clamped chunks, zero texture scales, bad face indices).
	Quiet bool `yaml:"quiet"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Decode: DecodeConfig{
			Quiet: false,
		},
	}
}
