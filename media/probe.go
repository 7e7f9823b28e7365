package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/kbukum/whisperbot/errors"
	"github.com/kbukum/whisperbot/logger"
	"github.com/kbukum/whisperbot/process"
)

// Prober reads the container duration of a media file with ffprobe.
type Prober struct {
	config Config
	log    *logger.Logger
}

// NewProber creates a Prober.
func NewProber(cfg Config, log *logger.Logger) *Prober {
	if log == nil {
		log = logger.Nop()
	}
	return &Prober{config: cfg, log: log.WithComponent("media.probe")}
}

// ProbeDuration returns the duration of path in seconds. Any failure,
// including output that is not a number, is UnreadableMedia.
func (p *Prober) ProbeDuration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.ToolTimeout)
	defer cancel()

	res, err := process.Run(ctx, process.Command{
		Binary: p.config.FFprobePath,
		Args: []string{
			"-i", path,
			"-show_entries", "format=duration",
			"-v", "quiet",
			"-of", "csv=p=0",
		},
	})
	if err != nil {
		p.log.Debug("ffprobe failed", logger.Fields("path", path, logger.FieldError, err.Error()))
		return 0, apperrors.UnreadableMedia(err)
	}

	seconds, err := parseDuration(res.StdoutString())
	if err != nil {
		return 0, apperrors.UnreadableMedia(err)
	}
	return seconds, nil
}

func parseDuration(out string) (float64, error) {
	// Some containers report one line per program; the first is the format.
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	out = strings.TrimSpace(out)
	if out == "" || out == "N/A" {
		return 0, fmt.Errorf("media: no duration reported")
	}
	v, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, fmt.Errorf("media: parse duration %q: %w", out, err)
	}
	return v, nil
}
