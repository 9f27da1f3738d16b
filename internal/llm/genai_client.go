package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/jonathan/career-extractor/internal/types"
)

// GenAIClient implements Client with the google.golang.org/genai SDK,
// against either the Gemini API or Vertex AI backend.
type GenAIClient struct {
	client   *genai.Client
	config   *Config
	provider Provider
}

// NewGenAIClient creates a client for ProviderGenAI or ProviderVertex.
func NewGenAIClient(ctx context.Context, config *Config, apiKey string) (*GenAIClient, error) {
	if config == nil {
		config = DefaultConfig().WithProvider(ProviderGenAI)
	}

	cfg := &genai.ClientConfig{}
	switch config.Provider {
	case ProviderVertex:
		if config.Project == "" || config.Location == "" {
			return nil, errors.New("vertex backend requires project and location")
		}
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = config.Project
		cfg.Location = config.Location
	default:
		apiKey = strings.TrimSpace(apiKey)
		if apiKey == "" {
			return nil, errors.New("API key is required")
		}
		cfg.APIKey = apiKey
		cfg.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	provider := config.Provider
	if provider != ProviderVertex {
		provider = ProviderGenAI
	}
	return &GenAIClient{client: client, config: config, provider: provider}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (*Response, error) {
	return c.generate(ctx, prompt, tier, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.config.Temperature),
	})
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GenAIClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (*Response, error) {
	resp, err := c.generate(ctx, prompt, tier, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.config.Temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	resp.Text = CleanJSONBlock(resp.Text)
	return resp, nil
}

func (c *GenAIClient) generate(ctx context.Context, prompt string, tier ModelTier, cfg *genai.GenerateContentConfig) (*Response, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt must not be empty")
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), cfg)
	if err != nil {
		return nil, &CallError{Provider: c.provider, Model: modelName, Message: "generate content", Cause: err}
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
		// first candidate with content wins
		if builder.Len() > 0 {
			break
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return nil, &CallError{Provider: c.provider, Model: modelName, Message: "read response", Cause: ErrEmptyResponse}
	}

	out := &Response{Text: text, Model: modelName, Latency: time.Since(start)}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = types.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

// GetModel returns the model name for a tier
func (c *GenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the genai client holds no closable resources.
func (c *GenAIClient) Close() error {
	return nil
}
