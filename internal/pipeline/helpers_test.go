package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/types"
	"github.com/jonathan/career-extractor/internal/validation"
)

const testResume = `Jane Doe
jane@example.com | (555) 123-4567

SUMMARY
Engineering manager with 10 years of experience building payment platforms.

EXPERIENCE
Senior Engineering Manager, Acme Payments
- Led a team of 12 engineers delivering a new billing platform
- Reduced infrastructure costs by 30% through service consolidation
- Managed a budget of $2M across three product lines

SKILLS
Go, Kubernetes, PostgreSQL, Team Leadership

EDUCATION
B.S. Computer Science, State University`

// acceptAll is a rule that never raises an issue
type acceptAll struct{}

func (acceptAll) Name() string { return "accept_all" }

func (acceptAll) Check(context.Context, validation.Input) ([]types.ValidationIssue, error) {
	return nil, nil
}

var categoryItems = map[types.Category]string{
	types.CategoryPowerPhrases: `{"power_phrases": [{"statement": "Led a team of 12 engineers", "confidence": 0.9}, {"statement": "Reduced infrastructure costs by 30%%", "confidence": 0.8}], "reasoning": "%s"}`,
	types.CategorySkills:       `{"skills": [{"name": "Go", "confidence": 0.9}, {"name": "Kubernetes", "confidence": 0.9}, {"name": "PostgreSQL", "confidence": 0.8}], "reasoning": "%s"}`,
	types.CategoryCompetencies: `{"competencies": [{"area": "leadership", "inferred_capability": "Builds engineering teams", "confidence": 0.7}], "reasoning": "%s"}`,
	types.CategorySoftSkills:   `{"soft_skills": [{"name": "Communication", "behavioral_evidence": "Led a team of 12", "confidence": 0.8}], "reasoning": "%s"}`,
}

func validOutput(category types.Category) string {
	return fmt.Sprintf(categoryItems[category], category)
}

// fakeService answers completion calls per category and records them
type fakeService struct {
	mu      sync.Mutex
	calls   map[types.Category]int
	respond func(category types.Category, n int, req llm.CompletionRequest) (*llm.Response, error)
}

func newFakeService(respond func(types.Category, int, llm.CompletionRequest) (*llm.Response, error)) *fakeService {
	if respond == nil {
		respond = func(c types.Category, _ int, _ llm.CompletionRequest) (*llm.Response, error) {
			return reply(validOutput(c))
		}
	}
	return &fakeService{calls: map[types.Category]int{}, respond: respond}
}

func (f *fakeService) registry(categories ...types.Category) llm.Registry {
	if len(categories) == 0 {
		categories = types.AllCategories
	}
	reg := llm.Registry{}
	for _, c := range categories {
		category := c
		reg[c] = func(_ context.Context, req llm.CompletionRequest) (*llm.Response, error) {
			f.mu.Lock()
			f.calls[category]++
			n := f.calls[category]
			f.mu.Unlock()
			return f.respond(category, n, req)
		}
	}
	return reg
}

func (f *fakeService) count(c types.Category) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[c]
}

func reply(text string) (*llm.Response, error) {
	return &llm.Response{
		Text:  text,
		Model: "gemini-2.5-flash",
		Usage: types.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

func newTestOrchestrator(t *testing.T, store observability.Store, reg llm.Registry, opts ...Option) *Orchestrator {
	t.Helper()
	opts = append([]Option{WithEngine(validation.NewEngine(nil, acceptAll{}))}, opts...)
	return New(store, reg, opts...)
}

func testConfig() Config {
	return Config{
		ResumeText: testResume,
		VaultID:    "vault-1",
		UserID:     "user-1",
	}
}

func eventTypes(t *testing.T, store *observability.MemoryStore, result *Result) []string {
	t.Helper()
	events, err := store.ListEvents(context.Background(), result.SessionID)
	require.NoError(t, err)
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.EventType)
	}
	return out
}

func checkpointPhases(t *testing.T, store *observability.MemoryStore, result *Result) []string {
	t.Helper()
	cps, err := store.ListCheckpoints(context.Background(), result.SessionID)
	require.NoError(t, err)
	out := make([]string, 0, len(cps))
	for _, cp := range cps {
		out = append(out, cp.Phase)
	}
	return out
}
