package analysis

import (
	"errors"
	"fmt"
	"net/http"
)

// FallbackMessage is shown when a failure carries no usable detail.
const FallbackMessage = "An error occurred during analysis."

// Outcome labels used for logging and metrics.
const (
	OutcomeSucceeded         = "succeeded"
	OutcomeTransportError    = "transport_error"
	OutcomeServerError       = "server_error"
	OutcomeMalformedResponse = "malformed_response"
)

// TransportError means the request could not be sent or no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("analysis service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response. Detail holds the structured "detail" string when the body had one.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("bad status: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
	}
	return fmt.Sprintf("bad status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// MalformedResponseError is a 2xx response whose body does not satisfy the result contract.
type MalformedResponseError struct {
	Problems []string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed analysis response: %v", e.Err)
	}
	return fmt.Sprintf("malformed analysis response: %v", e.Problems)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// FailureMessage turns a request error into the text shown to the user.
func FailureMessage(err error) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Detail != "" {
		return serverErr.Detail
	}
	return FallbackMessage
}

// Outcome classifies err into one of the Outcome* labels.
func Outcome(err error) string {
	var (
		transportErr *TransportError
		serverErr    *ServerError
		malformedErr *MalformedResponseError
	)

	switch {
	case err == nil:
		return OutcomeSucceeded
	case errors.As(err, &serverErr):
		return OutcomeServerError
	case errors.As(err, &malformedErr):
		return OutcomeMalformedResponse
	case errors.As(err, &transportErr):
		return OutcomeTransportError
	default:
		return OutcomeTransportError
	}
}
