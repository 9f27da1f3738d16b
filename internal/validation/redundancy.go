package validation

import (
	"context"
	"fmt"

	"github.com/jonathan/career-extractor/internal/frameworks"
	"github.com/jonathan/career-extractor/internal/types"
)

const duplicateThreshold = 0.85

// RedundancyRule flags near-duplicate power phrases
type RedundancyRule struct{}

// Name implements Rule
func (RedundancyRule) Name() string { return RuleRedundancy }

// Check implements Rule
func (r RedundancyRule) Check(_ context.Context, in Input) ([]types.ValidationIssue, error) {
	if !in.InScope(types.CategoryPowerPhrases) {
		return nil, nil
	}
	phrases := in.Data.PowerPhrases
	sets := make([]map[string]bool, len(phrases))
	for i, p := range phrases {
		sets[i] = contentWords(p.Statement)
	}

	var issues []types.ValidationIssue
	for i := 0; i < len(phrases); i++ {
		for j := i + 1; j < len(phrases); j++ {
			sim := frameworks.Jaccard(sets[i], sets[j])
			if sim <= duplicateThreshold {
				continue
			}
			issues = append(issues, types.ValidationIssue{
				Rule:         r.Name(),
				Severity:     types.SeverityInfo,
				Message:      fmt.Sprintf("power phrases %d and %d look like duplicates (%.0f%% overlap)", i+1, j+1, sim*100),
				SuggestedFix: types.FixDeduplicate,
				Metadata:     map[string]any{"first": phrases[i].Statement, "second": phrases[j].Statement, "similarity": sim},
			})
		}
	}
	return issues, nil
}
