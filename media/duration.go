package media

import (
	apperrors "github.com/kbukum/whisperbot/errors"
)

// CheckDuration accepts durations in (0, maxSeconds]. A non-positive
// duration, or NaN, means the probe could not read the file.
func CheckDuration(seconds float64, maxSeconds int) error {
	if !(seconds > 0) {
		return apperrors.UnreadableMedia(nil).WithDetail("duration_s", seconds)
	}
	if seconds > float64(maxSeconds) {
		return apperrors.DurationExceeded(seconds, maxSeconds)
	}
	return nil
}

// IsShort reports whether a clip is below the short-audio threshold. Short
// clips are padded and transcribed in the default language.
func IsShort(seconds, threshold float64) bool {
	return seconds < threshold
}
