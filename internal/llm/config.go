// Package llm provides completion-service configuration and client abstractions.
// Extraction passes reach the service only through the CompletionFunc registry.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks such as per-section re-extraction
	TierLite ModelTier = "lite"
	// TierStandard is the default tier for extraction passes
	TierStandard ModelTier = "standard"
	// TierAdvanced is used for long or executive résumés and escalated retries
	TierAdvanced ModelTier = "advanced"
)

// Provider represents a completion-service client implementation
type Provider string

const (
	// ProviderGemini uses the generative-ai-go SDK
	ProviderGemini Provider = "gemini"
	// ProviderGenAI uses the google.golang.org/genai SDK against the Gemini API
	ProviderGenAI Provider = "genai"
	// ProviderVertex uses the google.golang.org/genai SDK against Vertex AI
	ProviderVertex Provider = "vertex"
)

// DefaultTemperature keeps structured output stable across attempts.
const DefaultTemperature float32 = 0.1

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// Project and Location are only read by the Vertex backend.
	Project  string
	Location string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
	}
}

// ParseTier maps a configuration string to a tier, defaulting to standard.
func ParseTier(s string) ModelTier {
	switch ModelTier(s) {
	case TierLite, TierStandard, TierAdvanced:
		return ModelTier(s)
	default:
		return TierStandard
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

// WithProvider returns a copy of the config using another provider.
func (c *Config) WithProvider(p Provider) *Config {
	cp := *c
	cp.Models = make(map[ModelTier]string, len(c.Models))
	for k, v := range c.Models {
		cp.Models[k] = v
	}
	cp.Provider = p
	return &cp
}
