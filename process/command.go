package process

import (
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin provides input to the process. May be nil. Ignored by Start.
	Stdin io.Reader
	// GracePeriod is how long Run waits after SIGTERM before SIGKILL.
	// Defaults to 5 seconds if zero.
	GracePeriod time.Duration
}

// String renders the command line for logs.
func (c Command) String() string {
	s := c.Binary
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

func (c Command) build() *exec.Cmd {
	ec := exec.Command(c.Binary, c.Args...) //nolint:gosec // dynamic args are the purpose of this package
	ec.Dir = c.Dir
	ec.Env = mergeEnv(c.Env)
	// Own process group so the whole tree can be signaled at once.
	ec.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return ec
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}

// signalGroup sends sig to the process group led by pid. A group that is
// already gone is not an error.
func signalGroup(pid int, sig syscall.Signal) error {
	if err := syscall.Kill(-pid, sig); err != nil && err != syscall.ESRCH {
		return err
	}
	return nil
}
