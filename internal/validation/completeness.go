package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/career-extractor/internal/types"
)

const (
	minPowerPhrases = 5
	minSkills       = 3
	minCoverage     = 0.30
)

// managementVerbs signal people or budget responsibility in an achievement
var managementVerbs = regexp.MustCompile(`(?i)\b(led|lead|leading|managed|manage|managing|directed|supervised|oversaw|overseeing|mentored|coached|hired|headed|spearheaded|built (a|the) team|grew (a|the) team|owned|ran)\b`)

// coverageStopWords are ignored when measuring how much of the résumé was covered
var coverageStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true, "that": true,
	"this": true, "into": true, "over": true, "across": true, "our": true, "their": true,
	"was": true, "were": true, "are": true, "has": true, "have": true, "via": true,
	"per": true, "all": true, "new": true, "using": true,
}

// CompletenessRule checks that each pass extracted enough material
type CompletenessRule struct{}

// Name implements Rule
func (CompletenessRule) Name() string { return RuleCompleteness }

// Check implements Rule
func (r CompletenessRule) Check(_ context.Context, in Input) ([]types.ValidationIssue, error) {
	var issues []types.ValidationIssue
	data := in.Data

	if in.InScope(types.CategoryPowerPhrases) {
		if n := len(data.PowerPhrases); n < minPowerPhrases {
			issues = append(issues, types.ValidationIssue{
				Rule:         r.Name(),
				Severity:     types.SeverityCritical,
				Message:      fmt.Sprintf("only %d power phrase(s) extracted, expected at least %d", n, minPowerPhrases),
				SuggestedFix: types.FixExtractMoreItems,
				Metadata:     map[string]any{"count": n, "minimum": minPowerPhrases},
			})
		}

		if in.ResumeText != "" {
			coverage := WordCoverage(in.ResumeText, data)
			if coverage < minCoverage {
				issues = append(issues, types.ValidationIssue{
					Rule:         r.Name(),
					Severity:     types.SeverityWarning,
					Message:      fmt.Sprintf("extracted items cover %.0f%% of résumé vocabulary, expected at least %.0f%%", coverage*100, minCoverage*100),
					SuggestedFix: types.FixIncreaseCoverage,
					Metadata:     map[string]any{"coverage": coverage},
				})
			}
		}

		if in.Framework != nil && len(in.Framework.ManagementBenchmarks) > 0 && !HasManagementEvidence(data.PowerPhrases) {
			issues = append(issues, types.ValidationIssue{
				Rule:         r.Name(),
				Severity:     types.SeverityCritical,
				Message:      "framework expects management scope but no achievement shows management responsibility",
				SuggestedFix: types.FixIncludeScopeMetrics,
			})
		}
	}

	if in.InScope(types.CategorySkills) {
		if n := len(data.Skills); n < minSkills {
			issues = append(issues, types.ValidationIssue{
				Rule:         r.Name(),
				Severity:     types.SeverityWarning,
				Message:      fmt.Sprintf("only %d skill(s) extracted, expected at least %d", n, minSkills),
				SuggestedFix: types.FixExtractMoreSkills,
				Metadata:     map[string]any{"count": n, "minimum": minSkills},
			})
		}
	}

	if in.perPass() {
		for _, c := range []types.Category{types.CategoryCompetencies, types.CategorySoftSkills} {
			if in.InScope(c) && data.Count(c) == 0 {
				issues = append(issues, types.ValidationIssue{
					Rule:         r.Name(),
					Severity:     types.SeverityCritical,
					Message:      fmt.Sprintf("no %s extracted", strings.ReplaceAll(string(c), "_", " ")),
					SuggestedFix: types.FixExtractMoreItems,
				})
			}
		}
	}

	return issues, nil
}

// HasManagementEvidence reports whether any phrase uses a management verb or a team-size metric
func HasManagementEvidence(phrases []types.PowerPhrase) bool {
	for _, p := range phrases {
		if managementVerbs.MatchString(p.Statement) {
			return true
		}
		for key := range p.ImpactMetrics {
			if isTeamMetric(key) {
				return true
			}
		}
	}
	return false
}

// WordCoverage returns the fraction of distinct résumé words that appear in extracted text
func WordCoverage(resumeText string, data *types.ExtractedData) float64 {
	resumeWords := contentWords(resumeText)
	if len(resumeWords) == 0 {
		return 1
	}
	extracted := contentWords(extractedText(data))
	covered := 0
	for w := range resumeWords {
		if extracted[w] {
			covered++
		}
	}
	return float64(covered) / float64(len(resumeWords))
}

func extractedText(data *types.ExtractedData) string {
	if data == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range data.PowerPhrases {
		sb.WriteString(p.Statement + " " + strings.Join(p.Keywords, " ") + " ")
	}
	for _, s := range data.Skills {
		sb.WriteString(s.Name + " ")
	}
	for _, c := range data.Competencies {
		sb.WriteString(c.Area + " " + c.EvidenceSource + " ")
	}
	for _, s := range data.SoftSkills {
		sb.WriteString(s.BehavioralEvidence + " ")
	}
	return sb.String()
}

func contentWords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) >= 3 && !coverageStopWords[w] {
			out[w] = true
		}
	}
	return out
}
