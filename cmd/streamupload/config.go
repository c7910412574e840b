package main

import (
	"fmt"

	"github.com/kbukum/streamupload/config"
	"github.com/kbukum/streamupload/logger"
	"github.com/kbukum/streamupload/observability"
	"github.com/kbukum/streamupload/server"
	"github.com/kbukum/streamupload/storage"
	"github.com/kbukum/streamupload/upload"
	"github.com/kbukum/streamupload/util"
)

const (
	serviceName = "streamupload"
	envPrefix   = "STREAMUPLOAD"
)

// AppConfig is the full configuration of the binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Upload        upload.Settings      `yaml:"upload" mapstructure:"upload"`
	Storage       storage.Settings     `yaml:"storage" mapstructure:"storage"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills in unset values.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
}

// Validate checks the sections the binary owns. Storage is validated when
// the uploader resolves it.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}

// loadConfig reads the config file (or the default search paths when path is
// empty) and STREAMUPLOAD_* environment overrides, then builds the logger.
func loadConfig(path string) (*AppConfig, *logger.Logger, error) {
	var cfg AppConfig
	opts := []config.LoaderOption{config.WithEnvPrefix(envPrefix)}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	fields := logger.Fields(
		"environment", cfg.Environment,
		"storage", cfg.Storage.Provider,
	)
	if cfg.Storage.AccessKey != "" {
		fields["access_key"] = util.MaskSecret(cfg.Storage.AccessKey, 4)
	}
	log.Debug("configuration loaded", fields)
	return &cfg, log, nil
}
