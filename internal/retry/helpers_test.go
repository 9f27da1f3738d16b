package retry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/prompts"
	"github.com/jonathan/career-extractor/internal/types"
	"github.com/jonathan/career-extractor/internal/validation"
)

// countRule scores a pass by how many power phrases it holds. Fewer than
// five is one critical plus five warnings (60, not passed); otherwise one
// warning per phrase short of ten, so 7 phrases score 85.
type countRule struct{}

func (countRule) Name() string { return "count" }

func (countRule) Check(_ context.Context, in validation.Input) ([]types.ValidationIssue, error) {
	n := in.Data.Count(types.CategoryPowerPhrases)
	warning := types.ValidationIssue{
		Rule:         "count",
		Severity:     types.SeverityWarning,
		Message:      "too few phrases",
		SuggestedFix: types.FixExtractMoreItems,
	}
	var issues []types.ValidationIssue
	if n < 5 {
		issues = append(issues, types.ValidationIssue{Rule: "count", Severity: types.SeverityCritical, Message: "under five phrases"})
		for i := 0; i < 5; i++ {
			issues = append(issues, warning)
		}
		return issues, nil
	}
	for i := n; i < 10; i++ {
		issues = append(issues, warning)
	}
	return issues, nil
}

func phrasesJSON(n int, prefix string) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"statement": "%s achievement %d", "confidence": 0.9}`, prefix, i)
	}
	return `{"power_phrases": [` + strings.Join(items, ", ") + `], "reasoning": "ok"}`
}

func reply(text string) (*llm.Response, error) {
	return &llm.Response{Text: text, Model: "test-model", Usage: types.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}, nil
}

type script struct {
	mu      sync.Mutex
	calls   []llm.CompletionRequest
	respond func(n int, req llm.CompletionRequest) (*llm.Response, error)
}

func (s *script) complete(_ context.Context, req llm.CompletionRequest) (*llm.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	n := len(s.calls)
	s.mu.Unlock()
	return s.respond(n, req)
}

func (s *script) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingObserver struct {
	mu          sync.Mutex
	calls       []Call
	validations int
	events      []string
}

func (o *recordingObserver) OnCall(_ context.Context, call Call) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, call)
}

func (o *recordingObserver) OnValidation(context.Context, types.Category, int, types.ValidationResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.validations++
}

func (o *recordingObserver) OnEvent(_ context.Context, eventType string, _ types.Category, _ string, _ map[string]any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, eventType)
}

var testStructure = &types.ResumeStructure{
	Sections: []types.Section{
		{Title: "Header", Type: types.SectionContact, Content: "Jane Doe", WordCount: 2},
		{Title: "Experience", Type: types.SectionExperience, Content: "Led a team of 8.", WordCount: 5},
		{Title: "Projects", Content: "Built a billing system.", WordCount: 4},
	},
}

func newRequest(s *script) PassRequest {
	return PassRequest{
		Category:   types.CategoryPowerPhrases,
		Prompt:     "extract power phrases",
		Input:      passInput(),
		Structure:  testStructure,
		Tier:       llm.TierStandard,
		Complete:   s.complete,
		Validation: validation.Input{ResumeText: "Led a team of 8. Built a billing system."},
	}
}

func newTestExecutor(t *testing.T, obs Observer, cfg Config) *Executor {
	t.Helper()
	return NewExecutor(validation.NewEngine(nil, countRule{}), WithConfig(cfg), WithObserver(obs))
}

// noSleep replaces the backoff sleep and records requested delays.
func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	t.Cleanup(func() { sleep = orig })
	return &delays
}

func passInput() prompts.PassInput {
	return prompts.PassInput{
		Category:   types.CategoryPowerPhrases,
		ResumeText: "Led a team of 8. Built a billing system.",
	}
}
