package publish

// State is a step of the publish workflow. The workflow advances through the
// states in order and never re-enters one; Done, Partial and Fatal are
// terminal.
type State int

const (
	StateCollecting State = iota
	StateCommitting
	StateRemoteCheck
	StatePushConfirm
	StatePushing
	StateDone
	StatePartial // committed locally, not pushed
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "COLLECTING"
	case StateCommitting:
		return "COMMITTING"
	case StateRemoteCheck:
		return "REMOTE_CHECK"
	case StatePushConfirm:
		return "PUSH_CONFIRM"
	case StatePushing:
		return "PUSHING"
	case StateDone:
		return "DONE"
	case StatePartial:
		return "PARTIAL"
	case StateFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the workflow stops in this state.
func (s State) Terminal() bool {
	return s == StateDone || s == StatePartial || s == StateFatal
}
