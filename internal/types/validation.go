package types

// Severity ranks a validation issue
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Suggested-fix tags attached to issues; recovery strategies translate them into prompt guidance
const (
	FixExtractMoreItems    = "extract_more_items"
	FixExtractMoreSkills   = "extract_more_skills"
	FixIncreaseCoverage    = "increase_coverage"
	FixIncludeScopeMetrics = "include_scope_metrics"
	FixIncludeLeadership   = "include_leadership_evidence"
	FixGroundSkills        = "ground_skills_in_evidence"
	FixImpossibleMetric    = "fix_impossible_metric"
	FixVerifyScale         = "verify_scale"
	FixDeduplicate         = "deduplicate"
)

// ValidationIssue is a single finding produced by a validation rule
type ValidationIssue struct {
	Rule         string         `json:"rule"`
	Severity     Severity       `json:"severity"`
	Message      string         `json:"message"`
	SuggestedFix string         `json:"suggested_fix,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ValidationResult aggregates the issues of a validation run
type ValidationResult struct {
	Passed             bool              `json:"passed"`
	Confidence         float64           `json:"confidence"`
	Issues             []ValidationIssue `json:"issues"`
	Recommendations    []string          `json:"recommendations"`
	RequiresUserReview bool              `json:"requires_user_review"`
}

// CountBySeverity returns how many issues carry severity s
func (r *ValidationResult) CountBySeverity(s Severity) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// SuggestedFixes returns the distinct suggested-fix tags in issue order
func (r *ValidationResult) SuggestedFixes() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, issue := range r.Issues {
		if issue.SuggestedFix == "" || seen[issue.SuggestedFix] {
			continue
		}
		seen[issue.SuggestedFix] = true
		out = append(out, issue.SuggestedFix)
	}
	return out
}
