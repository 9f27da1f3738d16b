package validation

import (
	"fmt"

	"github.com/jonathan/career-extractor/internal/types"
)

const (
	criticalPenalty = 15
	warningPenalty  = 5
	infoPenalty     = 1

	// ReviewThreshold is the confidence below which results need user review
	ReviewThreshold = 75
)

// ScoreConfidence returns 100 - 15*critical - 5*warning - 1*info, clamped to [0,100]
func ScoreConfidence(issues []types.ValidationIssue) float64 {
	score := 100
	for _, issue := range issues {
		switch issue.Severity {
		case types.SeverityCritical:
			score -= criticalPenalty
		case types.SeverityWarning:
			score -= warningPenalty
		case types.SeverityInfo:
			score -= infoPenalty
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return float64(score)
}

// BuildResult derives pass/confidence/review flags and recommendations from issues
func BuildResult(issues []types.ValidationIssue) types.ValidationResult {
	if issues == nil {
		issues = []types.ValidationIssue{}
	}
	result := types.ValidationResult{
		Confidence: ScoreConfidence(issues),
		Issues:     issues,
	}
	critical := result.CountBySeverity(types.SeverityCritical)
	result.Passed = critical == 0
	result.RequiresUserReview = result.Confidence < ReviewThreshold || critical > 0
	result.Recommendations = recommend(&result)
	return result
}

var fixRecommendations = map[string]string{
	types.FixExtractMoreItems:    "Extract additional quantified achievements from each role",
	types.FixExtractMoreSkills:   "List more of the skills demonstrated in the experience section",
	types.FixIncreaseCoverage:    "Cover more of the résumé; several sections produced no extracted items",
	types.FixIncludeScopeMetrics: "Capture management scope such as team size, budget or reports",
	types.FixIncludeLeadership:   "Add evidence of leadership that supports the senior title",
	types.FixGroundSkills:        "Tie high-confidence skills to concrete achievements",
	types.FixImpossibleMetric:    "Correct metrics that cannot be true, such as percentages above 100",
	types.FixVerifyScale:         "Verify unusually large team sizes or budgets",
	types.FixDeduplicate:         "Merge near-duplicate achievements",
}

func recommend(result *types.ValidationResult) []string {
	recs := []string{}
	if n := result.CountBySeverity(types.SeverityCritical); n > 0 {
		recs = append(recs, fmt.Sprintf("Review %d critical issue(s) before using these results", n))
	}
	for _, fix := range result.SuggestedFixes() {
		if rec, ok := fixRecommendations[fix]; ok {
			recs = append(recs, rec)
		}
	}
	if result.Confidence < ReviewThreshold {
		recs = append(recs, fmt.Sprintf("Confidence %.0f is below %d; manual review recommended", result.Confidence, ReviewThreshold))
	}
	return recs
}
