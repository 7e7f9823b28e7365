package engine

// State is a supervision state.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateTimedOut
	StateExitedOK
	StateExitedError
	StateCanceled
	StateDone
)

var stateNames = [...]string{
	StateStarting:    "starting",
	StateRunning:     "running",
	StateTimedOut:    "timed_out",
	StateExitedOK:    "exited_ok",
	StateExitedError: "exited_error",
	StateCanceled:    "canceled",
	StateDone:        "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends the invocation.
func (s State) Terminal() bool {
	switch s {
	case StateTimedOut, StateExitedOK, StateExitedError, StateCanceled:
		return true
	default:
		return false
	}
}
