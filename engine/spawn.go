package engine

import (
	"time"

	"github.com/kbukum/whisperbot/process"
)

// Child is a running engine process as the supervisor sees it. Drain,
// Exited and Kill must not block.
type Child interface {
	Drain() []byte
	Exited() bool
	Kill() error
	Wait() error
	ExitCode() int
	DrainRemaining(grace time.Duration) []byte
	Close() error
}

// Spawner starts engine processes.
type Spawner interface {
	Spawn(cmd process.Command) (Child, error)
}

// ProcessSpawner starts real child processes.
type ProcessSpawner struct{}

// Spawn starts cmd with merged output.
func (ProcessSpawner) Spawn(cmd process.Command) (Child, error) {
	s, err := process.Start(cmd)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// AutoLanguage asks the engine to detect the spoken language.
const AutoLanguage = "auto"

// Command builds the engine command line for one waveform.
func (c Config) Command(model Model, wavPath string, short bool) process.Command {
	lang := AutoLanguage
	if short {
		lang = c.DefaultLanguage
	}
	return process.Command{
		Binary: c.Path,
		Args: []string{
			"-m", model.Path,
			"-f", wavPath,
			"-l", lang,
			"-np", "-nt",
		},
	}
}
