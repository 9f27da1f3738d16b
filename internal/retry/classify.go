package retry

import (
	"errors"

	"github.com/jonathan/career-extractor/internal/parsing"
	"github.com/jonathan/career-extractor/internal/types"
	"github.com/jonathan/career-extractor/internal/validation"
)

// ErrorClass selects which recovery strategies apply
type ErrorClass string

const (
	ClassTransient     ErrorClass = "transient"
	ClassMalformed     ErrorClass = "malformed"
	ClassIncomplete    ErrorClass = "incomplete"
	ClassLowConfidence ErrorClass = "low_confidence"
)

// Classify maps a failed attempt to an ErrorClass. A non-nil err takes
// precedence over the validation result.
func Classify(err error, result *types.ValidationResult) ErrorClass {
	if err != nil {
		var parseErr *parsing.ParseError
		var schemaErr *parsing.SchemaError
		if errors.As(err, &parseErr) || errors.As(err, &schemaErr) {
			return ClassMalformed
		}
		return ClassTransient
	}
	if result != nil {
		for _, issue := range result.Issues {
			if issue.Severity == types.SeverityCritical && issue.Rule == validation.RuleCompleteness {
				return ClassIncomplete
			}
		}
	}
	return ClassLowConfidence
}
