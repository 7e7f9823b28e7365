package main

import (
	"fmt"

	"github.com/kbukum/whisperbot/auth"
	"github.com/kbukum/whisperbot/config"
	"github.com/kbukum/whisperbot/httpapi"
	"github.com/kbukum/whisperbot/observability"
	"github.com/kbukum/whisperbot/server"
	"github.com/kbukum/whisperbot/sse"
	"github.com/kbukum/whisperbot/transcriber"
)

// AppConfig is the whole service configuration, loaded from
// cmd/whisperbot/config.yml and the environment.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Transcriber   transcriber.Config   `yaml:"transcriber" mapstructure:"transcriber"`
	HTTP          server.Config        `yaml:"http" mapstructure:"http"`
	API           httpapi.Config       `yaml:"api" mapstructure:"api"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	SSE           SSEConfig            `yaml:"sse" mapstructure:"sse"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// SSEConfig tunes the event stream.
type SSEConfig struct {
	KeepAlive int `yaml:"keep_alive" mapstructure:"keep_alive"` // seconds
}

// ApplyDefaults fills zero values in every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Transcriber.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	c.API.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.SSE.KeepAlive == 0 {
		c.SSE.KeepAlive = int(sse.DefaultKeepAlive.Seconds())
	}
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Transcriber.Validate(); err != nil {
		return fmt.Errorf("transcriber: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if c.SSE.KeepAlive < 0 {
		return fmt.Errorf("sse.keep_alive must be non-negative (got: %d)", c.SSE.KeepAlive)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}
