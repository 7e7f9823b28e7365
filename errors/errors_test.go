package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeQueueFull, "busy", http.StatusServiceUnavailable)
	if !err.Retryable {
		t.Error("QUEUE_FULL should be retryable")
	}
	err = New(ErrCodeDurationExceeded, "long", http.StatusRequestEntityTooLarge)
	if err.Retryable {
		t.Error("DURATION_EXCEEDED should not be retryable")
	}
}

func TestJobFailureMessages(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
		msg  string
	}{
		{"download", DownloadFailed(cause), ErrCodeDownloadFailed, "Can't download audio."},
		{"unreadable", UnreadableMedia(cause), ErrCodeUnreadableMedia, "Can't read audio duration."},
		{"too long", DurationExceeded(912.4, 900), ErrCodeDurationExceeded, "Audio too long: 912s (max 900s)."},
		{"conversion", ConversionFailed(cause), ErrCodeConversionFailed, "Audio conversion failed."},
		{"queue full", QueueFull(10), ErrCodeQueueFull, "Too busy, try later."},
		{"spawn", SpawnFailed(cause), ErrCodeSpawnFailed, "Transcription failed."},
		{"timeout", EngineTimeout(10 * time.Minute), ErrCodeEngineTimeout, "Transcription timed out."},
		{"exit", EngineExitedNonZero(3), ErrCodeEngineExitedNonZero, "Transcription failed."},
		{"canceled", Canceled(cause), ErrCodeCanceled, "Transcription canceled."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Message != tc.msg {
				t.Errorf("expected message %q, got %q", tc.msg, tc.err.Message)
			}
			if UserMessage(tc.err) != tc.msg {
				t.Errorf("UserMessage mismatch: %q", UserMessage(tc.err))
			}
		})
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := ConversionFailed(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestIsCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("handle job 7: %w", QueueFull(3))
	if !IsCode(err, ErrCodeQueueFull) {
		t.Error("expected wrapped QUEUE_FULL to match")
	}
	if IsCode(err, ErrCodeEngineTimeout) {
		t.Error("unexpected match for ENGINE_TIMEOUT")
	}
	if IsCode(fmt.Errorf("plain"), ErrCodeQueueFull) {
		t.Error("plain error should not match")
	}
}

func TestUserMessage_PlainError(t *testing.T) {
	if got := UserMessage(fmt.Errorf("x")); got != MsgEngineFailed {
		t.Errorf("expected generic failure text, got %q", got)
	}
}

func TestToResponse(t *testing.T) {
	resp := DurationExceeded(1000, 900).ToResponse()
	if resp.Error.Code != ErrCodeDurationExceeded {
		t.Errorf("expected code in body, got %s", resp.Error.Code)
	}
	if resp.Error.Details["max_s"] != 900 {
		t.Errorf("expected max_s detail, got %v", resp.Error.Details["max_s"])
	}
}

func TestTransportConstructors(t *testing.T) {
	if Unauthorized("").Message != "Authentication required." {
		t.Error("expected default unauthorized message")
	}
	if Forbidden("").HTTPStatus != http.StatusForbidden {
		t.Error("expected 403")
	}
	nf := NotFound("chat", "")
	if _, ok := nf.Details["id"]; ok {
		t.Error("expected no id detail when id is empty")
	}
	if InvalidInput("kind", "unknown").Details["field"] != "kind" {
		t.Error("expected field detail")
	}
}
