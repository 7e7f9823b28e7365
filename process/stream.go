package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

const readChunkSize = 4096

// Stream is a running child whose stdout and stderr share one pipe.
// Drain, Exited and Kill never block. Wait blocks until the child is reaped.
type Stream struct {
	cmd     *exec.Cmd
	r       *os.File
	started time.Time

	chunks chan []byte
	done   chan struct{}
	quit   chan struct{}

	waitErr   error
	killOnce  sync.Once
	killErr   error
	closeOnce sync.Once
}

// Start launches cmd with stdout and stderr merged into one pipe.
func Start(cmd Command) (*Stream, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("process: pipe: %w", err)
	}

	c := cmd.build()
	c.Stdout = w
	c.Stderr = w

	if err := c.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
	}
	// The child holds its own copy; ours must go so EOF arrives on exit.
	_ = w.Close()

	s := &Stream{
		cmd:     c,
		r:       r,
		started: time.Now(),
		chunks:  make(chan []byte, 64),
		done:    make(chan struct{}),
		quit:    make(chan struct{}),
	}
	go s.pump()
	go s.wait()
	return s, nil
}

func (s *Stream) pump() {
	defer close(s.chunks)
	buf := make([]byte, readChunkSize)
	for {
		n, err := s.r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.chunks <- chunk:
			case <-s.quit:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Stream) wait() {
	s.waitErr = s.cmd.Wait()
	close(s.done)
}

// Pid returns the child's process id, which is also its process group id.
func (s *Stream) Pid() int {
	return s.cmd.Process.Pid
}

// StartedAt returns when the child was spawned.
func (s *Stream) StartedAt() time.Time {
	return s.started
}

// Drain returns all output that is available right now, possibly none.
func (s *Stream) Drain() []byte {
	var out []byte
	for {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				return out
			}
			out = append(out, chunk...)
		default:
			return out
		}
	}
}

// Exited reports whether the child has exited and been reaped.
func (s *Stream) Exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Kill sends SIGKILL to the child's process group. It is a no-op once the
// child has been reaped.
func (s *Stream) Kill() error {
	s.killOnce.Do(func() {
		if s.Exited() {
			return
		}
		s.killErr = signalGroup(s.cmd.Process.Pid, syscall.SIGKILL)
	})
	return s.killErr
}

// Wait blocks until the child is reaped and returns its exit error, nil for
// status 0.
func (s *Stream) Wait() error {
	<-s.done
	return s.waitErr
}

// ExitCode returns the exit status once the child has been reaped, -1 if it
// was killed by a signal or is still running.
func (s *Stream) ExitCode() int {
	if !s.Exited() {
		return -1
	}
	return s.cmd.ProcessState.ExitCode()
}

// DrainRemaining collects output until the pipe reaches EOF or grace
// elapses, whichever comes first. Call it after the child has exited.
func (s *Stream) DrainRemaining(grace time.Duration) []byte {
	// A descendant may still hold the write end; the deadline stops the pump.
	if err := s.r.SetReadDeadline(time.Now().Add(grace)); err != nil && !errors.Is(err, os.ErrNoDeadline) {
		return s.Drain()
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	var out []byte
	for {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				return out
			}
			out = append(out, chunk...)
		case <-timer.C:
			return append(out, s.Drain()...)
		}
	}
}

// Close releases the read end of the output pipe. Output not yet drained
// is discarded.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.quit)
		err = s.r.Close()
	})
	return err
}
