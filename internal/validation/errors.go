// Package validation checks extracted career data against the résumé text and matched framework.
package validation

import "fmt"

// RuleError represents a rule that could not complete its check
type RuleError struct {
	Rule  string
	Cause error
}

func (e *RuleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation rule %s failed: %v", e.Rule, e.Cause)
	}
	return fmt.Sprintf("validation rule %s failed", e.Rule)
}

func (e *RuleError) Unwrap() error {
	return e.Cause
}
