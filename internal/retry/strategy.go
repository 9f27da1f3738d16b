package retry

import (
	"context"
	"errors"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/parsing"
	"github.com/jonathan/career-extractor/internal/prompts"
	"github.com/jonathan/career-extractor/internal/repair"
	"github.com/jonathan/career-extractor/internal/types"
)

// Strategy names
const (
	StrategyEnhancedPrompt   = "enhanced_prompt"
	StrategyJSONRepair       = "json_repair"
	StrategySectionBySection = "section_by_section"
	StrategyEscalatedModel   = "escalated_model"
)

// Strategy is one corrective action for a rejected attempt
type Strategy interface {
	Name() string
	// Cost is the relative expense; cheaper strategies run first
	Cost() int
	Applicable(class ErrorClass, attempt int) bool
	Apply(ctx context.Context, run *Run) (*parsing.CategoryOutput, error)
}

// DefaultStrategies returns the standard recovery strategies
func DefaultStrategies() []Strategy {
	return []Strategy{
		EnhancedPrompt{},
		JSONRepair{},
		SectionBySection{},
		EscalatedModel{},
	}
}

// EnhancedPrompt re-runs the pass with guidance derived from the fired issues
type EnhancedPrompt struct{}

// Name implements Strategy
func (EnhancedPrompt) Name() string { return StrategyEnhancedPrompt }

// Cost implements Strategy
func (EnhancedPrompt) Cost() int { return 1 }

// Applicable implements Strategy
func (EnhancedPrompt) Applicable(class ErrorClass, _ int) bool {
	return class == ClassLowConfidence || class == ClassIncomplete
}

// Apply implements Strategy
func (s EnhancedPrompt) Apply(ctx context.Context, run *Run) (*parsing.CategoryOutput, error) {
	var fixes []string
	if run.LastValidation != nil {
		fixes = run.LastValidation.SuggestedFixes()
	}
	prompt := prompts.WithGuidance(run.Request.Prompt, fixes)
	return run.Complete(ctx, llm.CompletionRequest{Prompt: prompt}, s.Name())
}

// JSONRepair fixes malformed output locally, falling back to asking the
// service to re-emit its previous response as valid JSON
type JSONRepair struct{}

// Name implements Strategy
func (JSONRepair) Name() string { return StrategyJSONRepair }

// Cost implements Strategy
func (JSONRepair) Cost() int { return 1 }

// Applicable implements Strategy
func (JSONRepair) Applicable(class ErrorClass, _ int) bool {
	return class == ClassMalformed
}

// Apply implements Strategy
func (s JSONRepair) Apply(ctx context.Context, run *Run) (*parsing.CategoryOutput, error) {
	if run.LastRaw == "" {
		return nil, &Error{Strategy: s.Name(), Message: "no previous output to repair", Cause: run.LastErr}
	}

	if fixed, err := repair.JSON(run.LastRaw); err == nil && fixed.Changed() {
		if out, err := parsing.ParseCategoryOutput(run.Request.Category, fixed.JSON); err == nil {
			return out, nil
		}
	}

	prompt := prompts.BuildRepairPrompt(run.Request.Category, run.LastRaw, run.LastErr)
	return run.Complete(ctx, llm.CompletionRequest{Prompt: prompt}, s.Name())
}

// SectionBySection re-runs the pass once per résumé section and concatenates
// the results. Individual section failures are tolerated.
type SectionBySection struct{}

// Name implements Strategy
func (SectionBySection) Name() string { return StrategySectionBySection }

// Cost implements Strategy
func (SectionBySection) Cost() int { return 2 }

// Applicable implements Strategy
func (SectionBySection) Applicable(class ErrorClass, attempt int) bool {
	return attempt >= 2 && (class == ClassLowConfidence || class == ClassIncomplete)
}

// Apply implements Strategy
func (s SectionBySection) Apply(ctx context.Context, run *Run) (*parsing.CategoryOutput, error) {
	structure := run.Request.Structure
	if structure == nil {
		structure = parsing.ParseResumeStructure(run.Request.Input.ResumeText)
	}

	var sections []types.Section
	for _, sec := range structure.Sections {
		if sec.Type == types.SectionContact || sec.WordCount == 0 {
			continue
		}
		sections = append(sections, sec)
	}
	if len(sections) == 0 {
		return nil, &Error{Strategy: s.Name(), Message: "no sections to extract from"}
	}

	merged := types.NewExtractedData()
	var errs []error
	succeeded := 0
	for _, sec := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prompt, err := prompts.BuildSectionPrompt(run.Request.Input, sec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out, err := run.Complete(ctx, llm.CompletionRequest{Prompt: prompt}, s.Name())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		merged.Append(run.Request.Category, out.Data)
		succeeded++
	}
	if succeeded == 0 {
		return nil, &Error{Strategy: s.Name(), Message: "every section failed", Cause: errors.Join(errs...)}
	}
	if run.Request.Category == types.CategorySkills {
		merged.Skills = parsing.NormalizeSkills(merged.Skills)
	}
	return &parsing.CategoryOutput{Data: merged}, nil
}

// EscalatedModel re-runs the pass on the advanced tier with an accuracy hint.
// It only applies to the second attempt of a low-confidence pass.
type EscalatedModel struct{}

// Name implements Strategy
func (EscalatedModel) Name() string { return StrategyEscalatedModel }

// Cost implements Strategy
func (EscalatedModel) Cost() int { return 3 }

// Applicable implements Strategy
func (EscalatedModel) Applicable(class ErrorClass, attempt int) bool {
	return class == ClassLowConfidence && attempt == 2
}

// Apply implements Strategy
func (s EscalatedModel) Apply(ctx context.Context, run *Run) (*parsing.CategoryOutput, error) {
	return run.Complete(ctx, llm.CompletionRequest{
		Prompt:      run.Request.Prompt,
		Tier:        llm.TierAdvanced,
		HighQuality: true,
	}, s.Name())
}
