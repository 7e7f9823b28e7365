package process

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// StdoutString returns stdout with surrounding whitespace removed.
func (r *Result) StdoutString() string {
	return strings.TrimSpace(string(r.Stdout))
}

// StderrTail returns at most n trailing bytes of stderr, ignoring
// trailing whitespace.
func (r *Result) StderrTail(n int) string {
	s := bytes.TrimRight(r.Stderr, " \t\r\n")
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return strings.TrimSpace(string(s))
}

// ExitError reports a child that ran but did not exit with status 0.
type ExitError struct {
	Binary   string
	ExitCode int
	Err      error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process: %s exit code %d: %v", e.Binary, e.ExitCode, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }
