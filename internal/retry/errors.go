package retry

import "fmt"

// Error is returned by a strategy that could not produce a candidate
type Error struct {
	Strategy string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Strategy, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Strategy, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
