package config

import "fmt"

// Config holds the host process configuration. Fields left out of the
// loaded file keep their defaults; CLI flags may override them afterwards.
type Config struct {
	// LogLevel is one of "debug", "info", "warn" or "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format" json:"log_format"`

	// HealthPort is the introspection server port. 0 disables the server.
	HealthPort int `yaml:"health_port" json:"health_port"`

	// ManifestPaths are service manifest files or directories loaded at
	// startup, in order.
	ManifestPaths []string `yaml:"manifest_paths" json:"manifest_paths"`
}

// Default returns a Config with every field at its default value.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		HealthPort: 0,
	}
}

// Validate checks the configuration for values the host cannot run with.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be 'text' or 'json'", c.LogFormat)
	}
	if c.HealthPort < 0 || c.HealthPort > 65535 {
		return fmt.Errorf("invalid health_port %d: must be between 0 and 65535", c.HealthPort)
	}
	return nil
}
