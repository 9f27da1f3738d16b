package llm

import (
	"errors"
	"fmt"
)

// CallError wraps a failed completion-service call.
type CallError struct {
	Provider Provider
	Model    string
	Message  string
	Cause    error
}

func (e *CallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s call to %s failed: %s: %v", e.Provider, e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s call to %s failed: %s", e.Provider, e.Model, e.Message)
}

func (e *CallError) Unwrap() error {
	return e.Cause
}

// ErrEmptyResponse is the cause recorded when the service returned no text.
var ErrEmptyResponse = errors.New("empty response")
