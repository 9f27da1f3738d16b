package parsing

import "fmt"

// ParseError represents a completion response that is not usable JSON
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// SchemaError represents well-formed JSON that does not match the category's output schema
type SchemaError struct {
	Category string
	Cause    error
}

func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema error in %s output: %v", e.Category, e.Cause)
	}
	return fmt.Sprintf("schema error in %s output", e.Category)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}
