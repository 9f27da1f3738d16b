package observability

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/jonathan/career-extractor/internal/types"
)

// LowConfidenceThreshold marks a pass as low confidence in reports
const LowConfidenceThreshold = 70.0

// PassPhasePrefix prefixes the checkpoint phase written after each pass
const PassPhasePrefix = "pass:"

// PassSnapshot is the checkpoint stored after each extraction pass
type PassSnapshot struct {
	Category      string   `json:"category" mapstructure:"category"`
	Success       bool     `json:"success" mapstructure:"success"`
	Skipped       bool     `json:"skipped,omitempty" mapstructure:"skipped"`
	Confidence    float64  `json:"confidence" mapstructure:"confidence"`
	Attempts      int      `json:"attempts" mapstructure:"attempts"`
	FinalStrategy string   `json:"final_strategy" mapstructure:"final_strategy"`
	TotalCost     int      `json:"total_cost" mapstructure:"total_cost"`
	ItemCount     int      `json:"item_count" mapstructure:"item_count"`
	Strategies    []string `json:"strategies_tried,omitempty" mapstructure:"strategies_tried"`
	Error         string   `json:"error,omitempty" mapstructure:"error"`
}

// FinalSummary is the part of a session's final result that reports read
type FinalSummary struct {
	Success    bool `json:"success" mapstructure:"success"`
	Validation struct {
		Passed         *bool   `json:"passed" mapstructure:"passed"`
		Confidence     float64 `json:"confidence" mapstructure:"confidence"`
		CriticalIssues *int    `json:"critical_issues" mapstructure:"critical_issues"`
	} `json:"validation" mapstructure:"validation"`
}

// Decode reads a generic snapshot map into out using mapstructure tags
func Decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// GenerateReport rebuilds a session report from everything recorded for it
func GenerateReport(ctx context.Context, store Store, sessionID uuid.UUID) (*types.SessionReport, error) {
	session, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	events, err := store.ListEvents(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	responses, err := store.ListAIResponses(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ai responses: %w", err)
	}
	validations, err := store.ListValidationLogs(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation logs: %w", err)
	}
	checkpoints, err := store.ListCheckpoints(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	report := &types.SessionReport{
		SessionID:        session.ID,
		Status:           session.Status,
		EventCount:       len(events),
		ResponseCount:    len(responses),
		ModelsUsed:       []string{},
		PromptVersions:   []string{},
		CheckpointPhases: []string{},
		Recommendations:  []string{},
	}

	// 1. Duration
	end := time.Now().UTC()
	if session.EndedAt != nil {
		end = *session.EndedAt
	}
	report.DurationMs = end.Sub(session.StartedAt).Milliseconds()

	// 2. Tokens, cost, latency, confidence
	models := map[string]bool{}
	versions := map[string]bool{}
	var latency, confidence float64
	for _, r := range responses {
		report.PromptTokens += r.Usage.PromptTokens
		report.CompletionTokens += r.Usage.CompletionTokens
		report.TotalTokens += r.Usage.TotalTokens
		report.TotalCostUSD += r.CostUSD
		latency += float64(r.LatencyMs)
		confidence += r.Confidence
		if r.Model != "" {
			models[r.Model] = true
		}
		if r.PromptVersion != "" {
			versions[r.PromptVersion] = true
		}
	}
	if n := len(responses); n > 0 {
		report.AverageLatencyMs = round1(latency / float64(n))
		report.AverageConfidence = round1(confidence / float64(n))
	}
	report.TotalCostUSD = math.Round(report.TotalCostUSD*1e6) / 1e6
	report.ModelsUsed = sortedKeys(models)
	report.PromptVersions = sortedKeys(versions)

	// 3. Retries
	for i := range events {
		if events[i].HasTag(types.TagRetry) {
			report.RetryCount++
		}
	}

	// 4. Checkpoints and pass confidence
	passSnapshots := 0
	for _, cp := range checkpoints {
		report.CheckpointPhases = append(report.CheckpointPhases, cp.Phase)
		if !strings.HasPrefix(cp.Phase, PassPhasePrefix) {
			continue
		}
		var snap PassSnapshot
		if err := Decode(cp.Snapshot, &snap); err != nil {
			continue
		}
		passSnapshots++
		if !snap.Skipped && snap.Confidence < LowConfidenceThreshold {
			report.LowConfidencePasses++
		}
	}
	latest := latestValidations(validations)
	if passSnapshots == 0 {
		for category, v := range latest {
			if category != "" && v.Confidence < LowConfidenceThreshold {
				report.LowConfidencePasses++
			}
		}
	}

	// 5. Final validation
	var summary FinalSummary
	haveSummary := len(session.FinalResult) > 0 && Decode(session.FinalResult, &summary) == nil
	if haveSummary && summary.Validation.CriticalIssues != nil {
		report.CriticalIssues = *summary.Validation.CriticalIssues
	} else if final, ok := latest[""]; ok {
		report.CriticalIssues = countCritical(final.Issues)
	} else {
		for _, v := range latest {
			report.CriticalIssues += countCritical(v.Issues)
		}
	}
	if haveSummary && summary.Validation.Passed != nil {
		passed := *summary.Validation.Passed
		report.FinalValidationPassed = &passed
	} else if final, ok := latest[""]; ok {
		passed := final.Passed
		report.FinalValidationPassed = &passed
	}

	report.Recommendations = recommend(report)
	return report, nil
}

// latestValidations returns the last validation log per category; "" is the final cross-validation
func latestValidations(logs []types.ValidationLog) map[types.Category]types.ValidationLog {
	out := make(map[types.Category]types.ValidationLog)
	for _, l := range logs {
		prev, ok := out[l.Category]
		if !ok || !l.CreatedAt.Before(prev.CreatedAt) {
			out[l.Category] = l
		}
	}
	return out
}

func countCritical(issues []types.ValidationIssue) int {
	n := 0
	for _, i := range issues {
		if i.Severity == types.SeverityCritical {
			n++
		}
	}
	return n
}

func recommend(r *types.SessionReport) []string {
	recs := []string{}
	if r.Status == types.SessionFailed {
		recs = append(recs, "Session failed; inspect the error events before reusing any data")
	}
	if r.CriticalIssues > 0 {
		recs = append(recs, fmt.Sprintf("%d critical issue(s) need review", r.CriticalIssues))
	}
	if r.LowConfidencePasses > 0 {
		recs = append(recs, fmt.Sprintf("%d pass(es) had low confidence", r.LowConfidencePasses))
	}
	if r.RetryCount > 0 {
		recs = append(recs, fmt.Sprintf("%d retry attempt(s) were needed; check the résumé layout and prompt version", r.RetryCount))
	}
	if r.ResponseCount == 0 && r.Status == types.SessionCompleted {
		recs = append(recs, "No completion responses were captured; check the completion registry")
	}
	return recs
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
