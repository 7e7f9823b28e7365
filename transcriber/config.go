package transcriber

import (
	"fmt"

	"github.com/kbukum/whisperbot/engine"
	"github.com/kbukum/whisperbot/media"
	"github.com/kbukum/whisperbot/validation"
)

// Config holds the transcription tunables.
type Config struct {
	// QueueCapacity is the maximum number of admitted jobs.
	QueueCapacity int           `yaml:"queue_capacity" mapstructure:"queue_capacity" validate:"gt=0"`
	Engine        engine.Config `yaml:"engine" mapstructure:"engine"`
	Media         media.Config  `yaml:"media" mapstructure:"media"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.QueueCapacity == 0 {
		c.QueueCapacity = 10
	}
	c.Engine.ApplyDefaults()
	c.Media.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Var("queue_capacity", c.QueueCapacity, "gt=0"); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("transcriber.engine: %w", err)
	}
	if err := c.Media.Validate(); err != nil {
		return fmt.Errorf("transcriber.media: %w", err)
	}
	return nil
}
