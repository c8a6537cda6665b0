package workflow

import "errors"

// MissingInputMessage is shown when submit is attempted without a resume or a job description.
const MissingInputMessage = "Please upload a resume and provide a job description."

// ErrBusy is returned by Submit while a request is outstanding.
var ErrBusy = errors.New("an analysis is already in progress")

// ErrClosed is returned by Submit after the controller has been torn down.
var ErrClosed = errors.New("workflow is closed")

// ValidationError reports which submit preconditions were not met.
type ValidationError struct {
	MissingFile           bool
	MissingJobDescription bool
}

func (e *ValidationError) Error() string {
	switch {
	case e.MissingFile && e.MissingJobDescription:
		return "missing resume and job description"
	case e.MissingFile:
		return "missing resume"
	default:
		return "missing job description"
	}
}
