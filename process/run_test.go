package process_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/whisperbot/process"
)

func TestRunEcho(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "echo",
		Args:   []string{"hello", "world"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	if out := result.StdoutString(); out != "hello world" {
		t.Fatalf("expected 'hello world', got %q", out)
	}
}

func TestRunStdin(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "cat",
		Stdin:  strings.NewReader("from stdin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := string(result.Stdout); out != "from stdin" {
		t.Fatalf("expected 'from stdin', got %q", out)
	}
}

func TestRunExitCode(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo bad input >&2; exit 42"},
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T", err)
	}
	if exitErr.ExitCode != 42 || result.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", result.ExitCode)
	}
	if tail := result.StderrTail(5); tail != "input" {
		t.Fatalf("expected stderr tail 'input', got %q", tail)
	}
}

func TestResultStderrTail(t *testing.T) {
	tests := []struct {
		stderr string
		n      int
		want   string
	}{
		{"bad input\n", 5, "input"},
		{"line one\nline two\r\n  ", 8, "line two"},
		{"short\n", 64, "short"},
		{"", 5, ""},
		{"\n\n", 5, ""},
	}
	for _, tc := range tests {
		r := process.Result{Stderr: []byte(tc.stderr)}
		if got := r.StderrTail(tc.n); got != tc.want {
			t.Errorf("StderrTail(%q, %d) = %q, want %q", tc.stderr, tc.n, got, tc.want)
		}
	}
}

func TestRunContextCancelKillsGroup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := process.Run(ctx, process.Command{
		Binary:      "sh",
		Args:        []string{"-c", "sleep 10 & sleep 10"},
		GracePeriod: 500 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error from context cancellation")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if result.Duration > 5*time.Second {
		t.Fatalf("process took too long to kill: %v", result.Duration)
	}
}

func TestRunEmptyBinary(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{})
	if err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{Binary: "/nonexistent/tool"})
	if err == nil {
		t.Fatal("expected start error")
	}
}

func TestRunEnv(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo $MY_TEST_VAR"},
		Env:    []string{"MY_TEST_VAR=hello123"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := result.StdoutString(); out != "hello123" {
		t.Fatalf("expected 'hello123', got %q", out)
	}
}

func TestCommandString(t *testing.T) {
	cmd := process.Command{Binary: "ffprobe", Args: []string{"-v", "error", "in.audio"}}
	if got := cmd.String(); got != "ffprobe -v error in.audio" {
		t.Fatalf("unexpected command line %q", got)
	}
}
