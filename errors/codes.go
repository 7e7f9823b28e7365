package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Job failure codes. Each maps to exactly one user-facing text.
const (
	// ErrCodeDownloadFailed indicates the attachment could not be materialized locally.
	ErrCodeDownloadFailed ErrorCode = "DOWNLOAD_FAILED"
	// ErrCodeUnreadableMedia indicates the duration probe failed or returned a non-positive value.
	ErrCodeUnreadableMedia ErrorCode = "UNREADABLE_MEDIA"
	// ErrCodeDurationExceeded indicates the audio is longer than the configured maximum.
	ErrCodeDurationExceeded ErrorCode = "DURATION_EXCEEDED"
	// ErrCodeConversionFailed indicates the waveform conversion failed.
	ErrCodeConversionFailed ErrorCode = "CONVERSION_FAILED"
	// ErrCodeQueueFull indicates the admission counter is at capacity.
	ErrCodeQueueFull ErrorCode = "QUEUE_FULL"
	// ErrCodeSpawnFailed indicates the engine process could not be started.
	ErrCodeSpawnFailed ErrorCode = "SPAWN_FAILED"
	// ErrCodeEngineTimeout indicates the engine exceeded its wall-clock budget.
	ErrCodeEngineTimeout ErrorCode = "ENGINE_TIMEOUT"
	// ErrCodeEngineExitedNonZero indicates the engine exited with a failure status.
	ErrCodeEngineExitedNonZero ErrorCode = "ENGINE_EXITED_NON_ZERO"
	// ErrCodeCanceled indicates the job was abandoned because the service is shutting down.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Transport errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeForbidden indicates the request is forbidden.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeRateLimited indicates the client sent too many requests.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Jobs are never retried automatically; Retryable only tells a client
// whether resubmitting the same request later may succeed.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeDownloadFailed:  true,
	ErrCodeQueueFull:       true,
	ErrCodeEngineTimeout:   true,
	ErrCodeCanceled:        true,
	ErrCodeSpawnFailed:     true,
	ErrCodeRateLimited:     true,
	ErrCodeInternal:        false,
	ErrCodeUnreadableMedia: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
