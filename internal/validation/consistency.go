package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/career-extractor/internal/types"
)

const highSkillConfidence = 0.8

var seniorSoundingTitle = regexp.MustCompile(`(?i)\b(senior|sr\.?|lead|principal|staff|director|head|chief|vp|vice president|president|manager)\b`)

// ConsistencyRule cross-checks titles, skills and achievements against each other
type ConsistencyRule struct{}

// Name implements Rule
func (ConsistencyRule) Name() string { return RuleConsistency }

// Check implements Rule
func (r ConsistencyRule) Check(_ context.Context, in Input) ([]types.ValidationIssue, error) {
	var issues []types.ValidationIssue
	phrases := in.powerPhrases()

	if in.InScope(types.CategoryPowerPhrases) && in.Role != nil && seniorSoundingTitle.MatchString(in.Role.PrimaryRole) {
		if !HasManagementEvidence(phrases) {
			issues = append(issues, types.ValidationIssue{
				Rule:         r.Name(),
				Severity:     types.SeverityCritical,
				Message:      fmt.Sprintf("title %q implies leadership but no achievement shows management responsibility", in.Role.PrimaryRole),
				SuggestedFix: types.FixIncludeLeadership,
				Metadata:     map[string]any{"role": in.Role.PrimaryRole},
			})
		}
	}

	if in.InScope(types.CategorySkills) && len(phrases) > 0 {
		var unsupported []string
		for _, s := range in.Data.Skills {
			if s.Confidence > highSkillConfidence && !mentionedIn(s.Name, phrases) {
				unsupported = append(unsupported, s.Name)
			}
		}
		if len(unsupported) > 0 {
			issues = append(issues, types.ValidationIssue{
				Rule:         r.Name(),
				Severity:     types.SeverityWarning,
				Message:      fmt.Sprintf("%d high-confidence skill(s) have no supporting achievement: %s", len(unsupported), strings.Join(unsupported, ", ")),
				SuggestedFix: types.FixGroundSkills,
				Metadata:     map[string]any{"skills": unsupported},
			})
		}
	}

	return issues, nil
}

func mentionedIn(skill string, phrases []types.PowerPhrase) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	if skill == "" {
		return true
	}
	re, err := regexp.Compile(`(^|[^\pL\pN])` + regexp.QuoteMeta(skill) + `($|[^\pL\pN])`)
	if err != nil {
		return false
	}
	for _, p := range phrases {
		if re.MatchString(strings.ToLower(p.Statement)) {
			return true
		}
		for _, kw := range p.Keywords {
			if strings.EqualFold(strings.TrimSpace(kw), skill) {
				return true
			}
		}
	}
	return false
}
