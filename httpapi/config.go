package httpapi

import (
	"github.com/kbukum/whisperbot/validation"
)

// Config holds the API tunables.
type Config struct {
	// SpoolDir holds uploads until their job downloads them.
	SpoolDir string `yaml:"spool_dir" mapstructure:"spool_dir" validate:"required"`
	// UploadsPerMinute limits uploads per chat.
	UploadsPerMinute int `yaml:"uploads_per_minute" mapstructure:"uploads_per_minute" validate:"gt=0"`
	// HistoryLimit bounds the messages kept per chat.
	HistoryLimit int `yaml:"history_limit" mapstructure:"history_limit" validate:"gt=0"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.SpoolDir == "" {
		c.SpoolDir = "/tmp/whisperbot-spool"
	}
	if c.UploadsPerMinute == 0 {
		c.UploadsPerMinute = 30
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 500
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
