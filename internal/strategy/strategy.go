// Package strategy derives an extraction plan from the parsed résumé and matched framework.
package strategy

import (
	"math"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/types"
)

// Focus-area tags
const (
	FocusManagementScope         = "management_scope"
	FocusLeadership              = "leadership"
	FocusStrategicThinking       = "strategic_thinking"
	FocusComprehensiveExtraction = "comprehensive_extraction"
)

const (
	comprehensiveWordCount = 1000
	upgradeWordCount       = 1500
	frameworkMinConfidence = 60

	baseDurationSeconds = 30.0

	// BaselineTier is used unless the résumé is long or executive-level
	BaselineTier = llm.TierStandard
	// UpgradedTier is used for long or executive-level résumés
	UpgradedTier = llm.TierAdvanced
)

// ExtractionStrategy is the plan the orchestrator follows for one session
type ExtractionStrategy struct {
	PassOrder                []types.Category `json:"pass_order"`
	FocusAreas               []string         `json:"focus_areas"`
	EstimatedDurationSeconds int              `json:"estimated_duration_seconds"`
	RecommendedTier          llm.ModelTier    `json:"recommended_tier"`
	ShouldUseFramework       bool             `json:"should_use_framework"`
}

// HasFocus reports whether the strategy carries the focus tag
func (s *ExtractionStrategy) HasFocus(tag string) bool {
	for _, f := range s.FocusAreas {
		if f == tag {
			return true
		}
	}
	return false
}

// Build is a pure function of its inputs. The pass order is always the fixed category order.
func Build(structure *types.ResumeStructure, role *types.RoleInfo, fwctx *types.FrameworkContext) ExtractionStrategy {
	wordCount, sectionCount := 0, 0
	if structure != nil {
		wordCount = structure.WordCount
		sectionCount = len(structure.Sections)
	}
	senior := role != nil && role.Seniority.IsSenior()
	executive := role != nil && role.Seniority == types.SeniorityExecutive

	focus := []string{}
	if fwctx.HasManagementBenchmarks() {
		focus = append(focus, FocusManagementScope)
	}
	if senior {
		focus = append(focus, FocusLeadership, FocusStrategicThinking)
	}
	if wordCount > comprehensiveWordCount {
		focus = append(focus, FocusComprehensiveExtraction)
	}

	tier := BaselineTier
	if wordCount > upgradeWordCount || executive {
		tier = UpgradedTier
	}

	return ExtractionStrategy{
		PassOrder:                append([]types.Category(nil), types.AllCategories...),
		FocusAreas:               focus,
		EstimatedDurationSeconds: EstimateDuration(wordCount, sectionCount),
		RecommendedTier:          tier,
		ShouldUseFramework:       fwctx != nil && fwctx.Framework != nil && fwctx.Confidence > frameworkMinConfidence,
	}
}

// EstimateDuration returns round(30 + 10*(words/500) + 5*(sections/5)) seconds
func EstimateDuration(wordCount, sectionCount int) int {
	d := baseDurationSeconds + 10*(float64(wordCount)/500) + 5*(float64(sectionCount)/5)
	return int(math.Round(d))
}
