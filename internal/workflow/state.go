package workflow

import "github.com/spigell/resume-matcher/internal/analysis"

// Kind names the workflow state.
type Kind int

const (
	Idle Kind = iota
	Submitting
	Succeeded
	Failed
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is exactly one of Idle, Submitting, Succeeded(result) or Failed(message).
// The payload of a state is only reachable through the matching accessor.
type State struct {
	kind    Kind
	result  *analysis.Result
	message string
}

func idleState() State { return State{kind: Idle} }

func submittingState() State { return State{kind: Submitting} }

func succeededState(result *analysis.Result) State {
	return State{kind: Succeeded, result: result}
}

func failedState(message string) State {
	return State{kind: Failed, message: message}
}

func (s State) Kind() Kind { return s.kind }

// Result returns the stored analysis result when the state is Succeeded.
func (s State) Result() (*analysis.Result, bool) {
	if s.kind != Succeeded {
		return nil, false
	}
	return s.result, true
}

// Message returns the failure message when the state is Failed.
func (s State) Message() (string, bool) {
	if s.kind != Failed {
		return "", false
	}
	return s.message, true
}

func (s State) String() string { return s.kind.String() }
