package engine

import (
	"time"

	apperrors "github.com/kbukum/whisperbot/errors"
	"github.com/kbukum/whisperbot/validation"
)

// ModelConfig names one model file.
type ModelConfig struct {
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
	Path string `yaml:"path" mapstructure:"path" validate:"required"`
}

// Config holds the engine tunables.
type Config struct {
	// Path is the engine executable.
	Path string `yaml:"path" mapstructure:"path" validate:"required"`
	// FastModel is used when the queue is deep.
	FastModel ModelConfig `yaml:"fast_model" mapstructure:"fast_model"`
	// QualityModel is used otherwise.
	QualityModel ModelConfig `yaml:"quality_model" mapstructure:"quality_model"`
	// FastModelDepth is the queue depth at which FastModel is selected.
	FastModelDepth int `yaml:"fast_model_depth" mapstructure:"fast_model_depth" validate:"gt=0"`
	// Timeout is measured from spawn.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// PollInterval is the supervision loop period.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval" validate:"gt=0"`
	// EditInterval is the minimum time between streaming edits.
	EditInterval time.Duration `yaml:"edit_interval" mapstructure:"edit_interval" validate:"gt=0"`
	// MessageLimit is the most transcript bytes per message. Continuation
	// messages add the marker on top.
	MessageLimit int `yaml:"message_limit" mapstructure:"message_limit" validate:"gt=0"`
	// ContinuationMarker opens every overflow message.
	ContinuationMarker string `yaml:"continuation_marker" mapstructure:"continuation_marker"`
	// DefaultLanguage is forced for short clips; longer ones auto-detect.
	DefaultLanguage string `yaml:"default_language" mapstructure:"default_language" validate:"required"`
	// DrainGrace bounds the final read after the child exits.
	DrainGrace time.Duration `yaml:"drain_grace" mapstructure:"drain_grace" validate:"gte=0"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "/app/build/bin/whisper-cli"
	}
	if c.FastModel.Name == "" {
		c.FastModel.Name = "base"
	}
	if c.FastModel.Path == "" {
		c.FastModel.Path = "/app/models/ggml-base.bin"
	}
	if c.QualityModel.Name == "" {
		c.QualityModel.Name = "medium"
	}
	if c.QualityModel.Path == "" {
		c.QualityModel.Path = "/app/models/ggml-medium.bin"
	}
	if c.FastModelDepth == 0 {
		c.FastModelDepth = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 600 * time.Second
	}
	if c.PollInterval == 0 {
		c.PollInterval = 100 * time.Millisecond
	}
	if c.EditInterval == 0 {
		c.EditInterval = 500 * time.Millisecond
	}
	if c.MessageLimit == 0 {
		c.MessageLimit = 4000
	}
	if c.ContinuationMarker == "" {
		c.ContinuationMarker = "[...]\n"
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "it"
	}
	if c.DrainGrace == 0 {
		c.DrainGrace = time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if len(c.ContinuationMarker) >= c.MessageLimit {
		return apperrors.InvalidInput("continuation_marker", "must be shorter than message_limit")
	}
	return nil
}
