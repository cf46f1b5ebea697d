package operations

import (
	"time"
)

// Config represents the operation execution configuration
type Config struct {
	// RunTimeout bounds a whole run. Zero disables the deadline.
	RunTimeout time.Duration `json:"run_timeout"`
}

// NewConfig returns the default operation configuration
func NewConfig() *Config {
	return &Config{
		RunTimeout: DefaultRunTimeout,
	}
}

// ConfigBuilder provides a fluent interface for building operation configurations
type ConfigBuilder struct {
	config *Config
}

// NewConfigBuilder creates a new configuration builder
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: NewConfig(),
	}
}

// WithRunTimeout sets the run deadline
func (b *ConfigBuilder) WithRunTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.RunTimeout = timeout
	return b
}

// Build returns the configuration
func (b *ConfigBuilder) Build() *Config {
	return b.config
}
