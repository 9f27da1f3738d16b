package llm

import (
	"context"
	"sync"
)

type fakeClient struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	tiers   []ModelTier
	text    string
	err     error
	closed  bool
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (*Response, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier ModelTier) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	if f.err != nil {
		return nil, f.err
	}
	return &Response{Text: f.text, Model: f.GetModel(tier)}, nil
}

func (f *fakeClient) GetModel(tier ModelTier) string {
	return DefaultConfig().GetModel(tier)
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}
