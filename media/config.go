package media

import (
	"time"

	"github.com/kbukum/whisperbot/validation"
)

// Config holds the preprocessing tunables.
type Config struct {
	// FFprobePath is the ffprobe binary.
	FFprobePath string `yaml:"ffprobe_path" mapstructure:"ffprobe_path" validate:"required"`
	// FFmpegPath is the ffmpeg binary.
	FFmpegPath string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path" validate:"required"`
	// TempDir holds the per-job input and waveform files.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir" validate:"required"`
	// MaxDurationSeconds is the longest accepted clip.
	MaxDurationSeconds int `yaml:"max_duration_seconds" mapstructure:"max_duration_seconds" validate:"gt=0"`
	// ShortAudioSeconds is the padding target and the language-mode cutoff.
	ShortAudioSeconds float64 `yaml:"short_audio_seconds" mapstructure:"short_audio_seconds" validate:"gt=0"`
	// SampleRate of the converted waveform.
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gt=0"`
	// ToolTimeout bounds one ffprobe or ffmpeg invocation.
	ToolTimeout time.Duration `yaml:"tool_timeout" mapstructure:"tool_timeout" validate:"gt=0"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.TempDir == "" {
		c.TempDir = "/tmp"
	}
	if c.MaxDurationSeconds == 0 {
		c.MaxDurationSeconds = 900
	}
	if c.ShortAudioSeconds == 0 {
		c.ShortAudioSeconds = 1.5
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.ToolTimeout == 0 {
		c.ToolTimeout = 2 * time.Minute
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
