package media

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/kbukum/whisperbot/errors"
	"github.com/kbukum/whisperbot/logger"
	"github.com/kbukum/whisperbot/process"
)

// Converter turns arbitrary audio into mono 16-bit PCM WAV with ffmpeg.
type Converter struct {
	config Config
	log    *logger.Logger
}

// NewConverter creates a Converter.
func NewConverter(cfg Config, log *logger.Logger) *Converter {
	if log == nil {
		log = logger.Nop()
	}
	return &Converter{config: cfg, log: log.WithComponent("media.convert")}
}

// ToWaveform converts in to out. Clips shorter than the short-audio
// threshold are padded with silence up to it.
func (c *Converter) ToWaveform(ctx context.Context, in, out string, seconds float64) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ToolTimeout)
	defer cancel()

	res, err := process.Run(ctx, process.Command{
		Binary: c.config.FFmpegPath,
		Args:   c.args(in, out, seconds),
	})
	if err != nil {
		tail := ""
		if res != nil {
			tail = res.StderrTail(512)
		}
		c.log.Debug("ffmpeg failed", logger.Fields("input", in, "stderr", tail, logger.FieldError, err.Error()))
		return apperrors.ConversionFailed(err)
	}
	return nil
}

func (c *Converter) args(in, out string, seconds float64) []string {
	args := []string{"-y", "-i", in}
	if IsShort(seconds, c.config.ShortAudioSeconds) {
		args = append(args, "-af", fmt.Sprintf("apad=whole_dur=%.1f", c.config.ShortAudioSeconds))
	}
	return append(args,
		"-ar", strconv.Itoa(c.config.SampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		out,
	)
}
