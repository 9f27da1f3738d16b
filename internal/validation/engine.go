package validation

import (
	"context"
	"fmt"

	"github.com/jonathan/career-extractor/internal/types"
	"go.uber.org/zap"
)

// Input is everything a rule may inspect
type Input struct {
	Data       *types.ExtractedData
	ResumeText string
	Role       *types.RoleInfo
	Framework  *types.CompetencyFramework
	// Prior holds buckets accepted by earlier passes, used for cross-references
	Prior *types.ExtractedData
	// Categories limits checks to the listed buckets; empty means all
	Categories []types.Category
}

// InScope reports whether checks concerning c should run
func (in Input) InScope(c types.Category) bool {
	if len(in.Categories) == 0 {
		return true
	}
	for _, k := range in.Categories {
		if k == c {
			return true
		}
	}
	return false
}

// perPass reports whether the input is scoped to specific passes
func (in Input) perPass() bool {
	return len(in.Categories) > 0
}

// powerPhrases returns the power phrases visible to cross-reference checks
func (in Input) powerPhrases() []types.PowerPhrase {
	var out []types.PowerPhrase
	if in.Data != nil {
		out = append(out, in.Data.PowerPhrases...)
	}
	if in.Prior != nil {
		out = append(out, in.Prior.PowerPhrases...)
	}
	return out
}

// Rule is one independent validation check
type Rule interface {
	Name() string
	Check(ctx context.Context, in Input) ([]types.ValidationIssue, error)
}

// Rule names as reported in ValidationIssue.Rule
const (
	RuleCompleteness = "completeness"
	RuleConsistency  = "consistency"
	RulePlausibility = "plausibility"
	RuleRedundancy   = "redundancy"
)

// DefaultRules returns the standard rule set in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		CompletenessRule{},
		ConsistencyRule{},
		PlausibilityRule{},
		RedundancyRule{},
	}
}

// Engine runs an ordered set of rules
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEngine creates an engine; with no rules it uses DefaultRules
func NewEngine(logger *zap.Logger, rules ...Rule) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules, logger: logger}
}

// Rules returns the engine's rule names in order
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}

// Validate runs every rule. A rule that errors or panics contributes a warning
// naming the rule instead of aborting the run.
func (e *Engine) Validate(ctx context.Context, in Input) types.ValidationResult {
	in.Data = in.Data.Normalize()

	issues := []types.ValidationIssue{}
	for _, rule := range e.rules {
		found, err := e.runRule(ctx, rule, in)
		if err != nil {
			e.logger.Warn("validation rule failed",
				zap.String("rule", rule.Name()),
				zap.Error(err),
			)
			issues = append(issues, types.ValidationIssue{
				Rule:     rule.Name(),
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("rule %s could not be evaluated: %v", rule.Name(), err),
			})
			continue
		}
		issues = append(issues, found...)
	}

	return BuildResult(issues)
}

func (e *Engine) runRule(ctx context.Context, rule Rule, in Input) (issues []types.ValidationIssue, err error) {
	defer func() {
		if r := recover(); r != nil {
			issues = nil
			err = &RuleError{Rule: rule.Name(), Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, &RuleError{Rule: rule.Name(), Cause: err}
	}
	issues, err = rule.Check(ctx, in)
	if err != nil {
		return nil, &RuleError{Rule: rule.Name(), Cause: err}
	}
	return issues, nil
}
