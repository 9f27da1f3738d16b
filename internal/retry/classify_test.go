package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/career-extractor/internal/parsing"
	"github.com/jonathan/career-extractor/internal/types"
	"github.com/jonathan/career-extractor/internal/validation"
)

func TestClassify(t *testing.T) {
	completenessCritical := &types.ValidationResult{Issues: []types.ValidationIssue{
		{Rule: validation.RuleCompleteness, Severity: types.SeverityCritical},
	}}
	otherCritical := &types.ValidationResult{Issues: []types.ValidationIssue{
		{Rule: validation.RuleConsistency, Severity: types.SeverityCritical},
		{Rule: validation.RuleCompleteness, Severity: types.SeverityWarning},
	}}

	tests := []struct {
		name   string
		err    error
		result *types.ValidationResult
		want   ErrorClass
	}{
		{"call error", errors.New("503"), nil, ClassTransient},
		{"parse error", &parsing.ParseError{Message: "bad"}, nil, ClassMalformed},
		{"wrapped schema error", fmt.Errorf("pass: %w", &parsing.SchemaError{Category: "skills"}), nil, ClassMalformed},
		{"error wins over result", errors.New("x"), completenessCritical, ClassTransient},
		{"critical completeness", nil, completenessCritical, ClassIncomplete},
		{"other issues", nil, otherCritical, ClassLowConfidence},
		{"nothing", nil, nil, ClassLowConfidence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err, tt.result))
		})
	}
}

func TestStrategyApplicability(t *testing.T) {
	tests := []struct {
		strategy Strategy
		class    ErrorClass
		attempt  int
		want     bool
	}{
		{EnhancedPrompt{}, ClassLowConfidence, 2, true},
		{EnhancedPrompt{}, ClassIncomplete, 3, true},
		{EnhancedPrompt{}, ClassMalformed, 2, false},
		{JSONRepair{}, ClassMalformed, 2, true},
		{JSONRepair{}, ClassTransient, 2, false},
		{SectionBySection{}, ClassIncomplete, 2, true},
		{SectionBySection{}, ClassLowConfidence, 1, false},
		{EscalatedModel{}, ClassLowConfidence, 2, true},
		{EscalatedModel{}, ClassLowConfidence, 3, false},
		{EscalatedModel{}, ClassIncomplete, 2, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s/%d", tt.strategy.Name(), tt.class, tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.strategy.Applicable(tt.class, tt.attempt))
		})
	}
}

func TestApplicableSortedByCost(t *testing.T) {
	e := NewExecutor(nil, WithStrategies(EscalatedModel{}, SectionBySection{}, EnhancedPrompt{}))
	var names []string
	for _, s := range e.applicable(ClassLowConfidence, 2) {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{StrategyEnhancedPrompt, StrategySectionBySection, StrategyEscalatedModel}, names)
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		base     time.Duration
		failures int
		want     time.Duration
	}{
		{time.Second, 1, time.Second},
		{time.Second, 2, 2 * time.Second},
		{time.Second, 3, 4 * time.Second},
		{time.Second, 0, 0},
		{0, 2, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, backoffDelay(tt.base, tt.failures))
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := []Config{
		{MaxAttempts: 0, MinConfidence: 70},
		{MaxAttempts: 3, MinConfidence: 120},
		{MaxAttempts: 3, MinConfidence: 70, CallTimeout: -time.Second},
	}
	for _, cfg := range bad {
		assert.Error(t, cfg.Validate())
	}
}
