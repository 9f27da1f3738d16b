package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/career-extractor/internal/types"
)

// QualityHint is appended to prompts when a retry asks for maximum accuracy.
const QualityHint = "This request requires high quality output. Accuracy matters more than speed: verify every statement against the résumé text."

// CompletionRequest is one structured-output call for an extraction pass.
type CompletionRequest struct {
	Category types.Category
	Prompt   string
	Tier     ModelTier
	// HighQuality escalates to the advanced tier and adds QualityHint.
	HighQuality bool
	Attempt     int
	Strategy    string
}

// CompletionFunc invokes the completion service for one pass.
type CompletionFunc func(ctx context.Context, req CompletionRequest) (*Response, error)

// Registry maps each extraction category to its completion function.
// Categories without an entry are skipped by the orchestrator.
type Registry map[types.Category]CompletionFunc

// Lookup returns the function registered for a category.
func (r Registry) Lookup(c types.Category) (CompletionFunc, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r[c]
	return fn, ok && fn != nil
}

// NewCompletionFunc adapts a Client into a CompletionFunc that requests JSON.
func NewCompletionFunc(client Client) CompletionFunc {
	return func(ctx context.Context, req CompletionRequest) (*Response, error) {
		prompt := req.Prompt
		tier := req.Tier
		if tier == "" {
			tier = TierStandard
		}
		if req.HighQuality {
			tier = TierAdvanced
			if !strings.Contains(prompt, QualityHint) {
				prompt = prompt + "\n\n" + QualityHint
			}
		}
		resp, err := client.GenerateJSON(ctx, prompt, tier)
		if err != nil {
			return nil, fmt.Errorf("%s completion failed: %w", req.Category, err)
		}
		return resp, nil
	}
}

// NewRegistry registers the same client for every category.
func NewRegistry(client Client, categories ...types.Category) Registry {
	if len(categories) == 0 {
		categories = types.AllCategories
	}
	fn := NewCompletionFunc(client)
	reg := make(Registry, len(categories))
	for _, c := range categories {
		reg[c] = fn
	}
	return reg
}
