package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Fixed user-facing texts.
const (
	MsgDownloadFailed   = "Can't download audio."
	MsgUnreadableMedia  = "Can't read audio duration."
	MsgConversionFailed = "Audio conversion failed."
	MsgQueueFull        = "Too busy, try later."
	MsgEngineFailed     = "Transcription failed."
	MsgEngineTimeout    = "Transcription timed out."
	MsgCanceled         = "Transcription canceled."
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is the human-readable text reported to the requester.
	Message string `json:"message"`
	// Retryable indicates if resubmitting may succeed.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Job failure constructors ---

// DownloadFailed reports that the attachment could not be fetched.
func DownloadFailed(cause error) *AppError {
	return New(ErrCodeDownloadFailed, MsgDownloadFailed, http.StatusBadGateway).WithCause(cause)
}

// UnreadableMedia reports a failed or non-positive duration probe.
func UnreadableMedia(cause error) *AppError {
	return New(ErrCodeUnreadableMedia, MsgUnreadableMedia, http.StatusUnprocessableEntity).WithCause(cause)
}

// DurationExceeded reports audio longer than maxSeconds.
func DurationExceeded(seconds float64, maxSeconds int) *AppError {
	return New(ErrCodeDurationExceeded,
		fmt.Sprintf("Audio too long: %.0fs (max %ds).", seconds, maxSeconds),
		http.StatusRequestEntityTooLarge).
		WithDetail("duration_s", seconds).
		WithDetail("max_s", maxSeconds)
}

// ConversionFailed reports a failed waveform conversion.
func ConversionFailed(cause error) *AppError {
	return New(ErrCodeConversionFailed, MsgConversionFailed, http.StatusUnprocessableEntity).WithCause(cause)
}

// QueueFull reports that admission was refused.
func QueueFull(capacity int) *AppError {
	return New(ErrCodeQueueFull, MsgQueueFull, http.StatusServiceUnavailable).
		WithDetail("capacity", capacity)
}

// SpawnFailed reports that the engine could not be started.
func SpawnFailed(cause error) *AppError {
	return New(ErrCodeSpawnFailed, MsgEngineFailed, http.StatusInternalServerError).WithCause(cause)
}

// EngineTimeout reports that the engine was killed after its timeout.
func EngineTimeout(limit fmt.Stringer) *AppError {
	return New(ErrCodeEngineTimeout, MsgEngineTimeout, http.StatusGatewayTimeout).
		WithDetail("timeout", limit.String())
}

// EngineExitedNonZero reports a failed engine exit.
func EngineExitedNonZero(exitCode int) *AppError {
	return New(ErrCodeEngineExitedNonZero, MsgEngineFailed, http.StatusBadGateway).
		WithDetail("exit_code", exitCode)
}

// Canceled reports a job abandoned on shutdown.
func Canceled(cause error) *AppError {
	return New(ErrCodeCanceled, MsgCanceled, http.StatusServiceUnavailable).WithCause(cause)
}

// --- Transport constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// Unauthorized creates a new AppError for unauthorized access.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// Forbidden creates a new AppError for forbidden access.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to access this chat."
	}
	return &AppError{
		Code: ErrCodeForbidden, Message: reason,
		HTTPStatus: http.StatusForbidden, Retryable: false,
	}
}

// RateLimited creates a new AppError for a client over its request budget.
func RateLimited(perMinute int) *AppError {
	return New(ErrCodeRateLimited, "Too many requests, slow down.", http.StatusTooManyRequests).
		WithDetail("limit_per_minute", perMinute)
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
