package pipeline

import (
	"github.com/google/uuid"

	"github.com/jonathan/career-extractor/internal/strategy"
	"github.com/jonathan/career-extractor/internal/types"
)

// Result is returned by OrchestrateExtraction, including alongside an error
type Result struct {
	Success    bool                 `json:"success"`
	SessionID  uuid.UUID            `json:"session_id"`
	Data       *types.ExtractedData `json:"data"`
	Validation ValidationSummary    `json:"validation"`
	Metadata   Metadata             `json:"metadata"`
	Context    PreExtractionContext `json:"context"`

	validated bool
}

// ValidationSummary is the final cross-validation over the combined data
type ValidationSummary struct {
	Passed             bool                    `json:"passed"`
	Confidence         float64                 `json:"confidence"`
	CriticalIssues     int                     `json:"critical_issues"`
	RequiresUserReview bool                    `json:"requires_user_review"`
	Issues             []types.ValidationIssue `json:"issues"`
	Recommendations    []string                `json:"recommendations"`
}

// Metadata aggregates the passes of a session
type Metadata struct {
	DurationMs int64        `json:"duration_ms"`
	TotalCost  int          `json:"total_cost"`
	RetryCount int          `json:"retry_count"`
	Passes     []PassResult `json:"passes"`
}

// PassResult is the outcome of one category pass
type PassResult struct {
	Category types.Category    `json:"category"`
	Skipped  bool              `json:"skipped,omitempty"`
	Result   types.RetryResult `json:"result"`
}

// PreExtractionContext is everything derived before the first pass
type PreExtractionContext struct {
	Structure  *types.ResumeStructure      `json:"structure"`
	Role       *types.RoleInfo             `json:"role"`
	Framework  *types.FrameworkContext     `json:"framework"`
	Strategy   strategy.ExtractionStrategy `json:"strategy"`
	PromptSafe bool                        `json:"prompt_safe"`
}

// ByCategory returns the results of the passes that ran
func (m Metadata) ByCategory() map[types.Category]types.RetryResult {
	out := make(map[types.Category]types.RetryResult, len(m.Passes))
	for _, p := range m.Passes {
		if !p.Skipped {
			out[p.Category] = p.Result
		}
	}
	return out
}

// Started reports whether a session was recorded for this result
func (r *Result) Started() bool {
	return r != nil && r.SessionID != uuid.Nil
}

func newResult(sessionID uuid.UUID) *Result {
	return &Result{
		SessionID: sessionID,
		Data:      types.NewExtractedData(),
		Validation: ValidationSummary{
			Issues:          []types.ValidationIssue{},
			Recommendations: []string{},
		},
		Metadata: Metadata{Passes: []PassResult{}},
	}
}

func summarize(v types.ValidationResult) ValidationSummary {
	s := ValidationSummary{
		Passed:             v.Passed,
		Confidence:         v.Confidence,
		CriticalIssues:     v.CountBySeverity(types.SeverityCritical),
		RequiresUserReview: v.RequiresUserReview,
		Issues:             v.Issues,
		Recommendations:    v.Recommendations,
	}
	if s.Issues == nil {
		s.Issues = []types.ValidationIssue{}
	}
	if s.Recommendations == nil {
		s.Recommendations = []string{}
	}
	return s
}

// finalSnapshot is what the session row keeps as its final result
type finalSnapshot struct {
	Success    bool                   `json:"success"`
	Validation *ValidationSummary     `json:"validation,omitempty"`
	DurationMs int64                  `json:"duration_ms"`
	TotalCost  int                    `json:"total_cost"`
	RetryCount int                    `json:"retry_count"`
	ItemCounts map[types.Category]int `json:"item_counts"`
	Data       *types.ExtractedData   `json:"data"`
	Error      string                 `json:"error,omitempty"`
}

func (r *Result) snapshot(err error) finalSnapshot {
	counts := make(map[types.Category]int, len(types.AllCategories))
	for _, c := range types.AllCategories {
		counts[c] = r.Data.Count(c)
	}
	s := finalSnapshot{
		Success:    r.Success,
		DurationMs: r.Metadata.DurationMs,
		TotalCost:  r.Metadata.TotalCost,
		RetryCount: r.Metadata.RetryCount,
		ItemCounts: counts,
		Data:       r.Data,
	}
	if r.validated {
		v := r.Validation
		s.Validation = &v
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}
