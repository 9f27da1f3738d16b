package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/career-extractor/internal/types"
)

const (
	maxPercentage      = 100
	maxTeamSize        = 1000
	maxBudget          = 10_000_000_000
	teamBenchmarkRatio = 2
	budgetBenchmarkMul = 3
)

// PlausibilityRule flags numeric claims that are impossible or implausible
type PlausibilityRule struct{}

// Name implements Rule
func (PlausibilityRule) Name() string { return RulePlausibility }

// Check implements Rule
func (r PlausibilityRule) Check(_ context.Context, in Input) ([]types.ValidationIssue, error) {
	if !in.InScope(types.CategoryPowerPhrases) {
		return nil, nil
	}

	var teamMax, budgetMax float64
	if b := in.Framework.Benchmark("team_size"); b != nil {
		teamMax = b.Max
	}
	if b := in.Framework.Benchmark("budget"); b != nil {
		budgetMax = b.Max
	}

	var issues []types.ValidationIssue
	for _, p := range in.Data.PowerPhrases {
		keys := make([]string, 0, len(p.ImpactMetrics))
		for key := range p.ImpactMetrics {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value := p.ImpactMetrics[key]
			switch {
			case isPercentMetric(key):
				if value > maxPercentage {
					issues = append(issues, r.issue(types.SeverityCritical, types.FixImpossibleMetric, p, key, value,
						fmt.Sprintf("%s of %.0f exceeds 100%%", key, value)))
				}
			case isTeamMetric(key):
				if value > maxTeamSize {
					issues = append(issues, r.issue(types.SeverityWarning, types.FixVerifyScale, p, key, value,
						fmt.Sprintf("team size %.0f exceeds %d", value, maxTeamSize)))
				} else if teamMax > 0 && value > teamBenchmarkRatio*teamMax {
					issues = append(issues, r.issue(types.SeverityWarning, types.FixVerifyScale, p, key, value,
						fmt.Sprintf("team size %.0f is more than %dx the benchmark maximum of %.0f", value, teamBenchmarkRatio, teamMax)))
				}
			case isBudgetMetric(key):
				if value > maxBudget {
					issues = append(issues, r.issue(types.SeverityWarning, types.FixVerifyScale, p, key, value,
						fmt.Sprintf("budget %.0f exceeds $10B", value)))
				} else if budgetMax > 0 && value > budgetBenchmarkMul*budgetMax {
					issues = append(issues, r.issue(types.SeverityWarning, types.FixVerifyScale, p, key, value,
						fmt.Sprintf("budget %.0f is more than %dx the benchmark maximum of %.0f", value, budgetBenchmarkMul, budgetMax)))
				}
			}
		}
	}
	return issues, nil
}

func (r PlausibilityRule) issue(sev types.Severity, fix string, p types.PowerPhrase, key string, value float64, msg string) types.ValidationIssue {
	return types.ValidationIssue{
		Rule:         r.Name(),
		Severity:     sev,
		Message:      msg,
		SuggestedFix: fix,
		Metadata:     map[string]any{"statement": p.Statement, "metric": key, "value": value},
	}
}

func isPercentMetric(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "percent") || k == "pct" || strings.HasSuffix(k, "_pct")
}

func isTeamMetric(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "team") || strings.Contains(k, "headcount") || strings.Contains(k, "direct_reports")
}

func isBudgetMetric(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "budget")
}
