package server

import (
	"github.com/kbukum/streamupload/validation"
)

// Config holds HTTP server configuration.
//
// Timeouts are in seconds. ReadTimeout bounds the whole request including the
// body, so it is generous by default: uploads stream through it.
type Config struct {
	Enabled           bool   `yaml:"enabled" mapstructure:"enabled"`
	Host              string `yaml:"host" mapstructure:"host"`
	Port              int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadHeaderTimeout int    `yaml:"read_header_timeout" mapstructure:"read_header_timeout" validate:"gte=0"`
	ReadTimeout       int    `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout      int    `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout       int    `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 10
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 600
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 600
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
