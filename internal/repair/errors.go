// Package repair performs best-effort syntactic repair of malformed JSON output.
//
// The repair is heuristic: it strips wrapping markers, removes trailing commas
// and balances unmatched braces and brackets. It cannot recover reordered or
// deeply malformed structures, and a successful repair says nothing about
// whether the content is correct.
package repair

import "fmt"

// Error represents output that could not be repaired into valid JSON
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repair error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("repair error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
