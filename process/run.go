package process

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// Run executes a subprocess and waits for it to complete.
// If the context is canceled, SIGTERM is sent to the process group first,
// then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}

	c := cmd.build()
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}
	// Bounds Wait when a leftover grandchild keeps the output pipes open.
	c.WaitDelay = gracePeriod

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- c.Wait() }()

	start := time.Now()
	var err error
	canceled := false
	select {
	case err = <-waitDone:
	case <-ctx.Done():
		canceled = true
		_ = signalGroup(c.Process.Pid, syscall.SIGTERM)
		select {
		case err = <-waitDone:
		case <-time.After(gracePeriod):
			_ = signalGroup(c.Process.Pid, syscall.SIGKILL)
			err = <-waitDone
		}
	}

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if canceled {
		return result, fmt.Errorf("process: killed by context: %w", ctx.Err())
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return result, &ExitError{Binary: cmd.Binary, ExitCode: result.ExitCode, Err: err}
		}
		return result, fmt.Errorf("process: wait %s: %w", cmd.Binary, err)
	}
	return result, nil
}
