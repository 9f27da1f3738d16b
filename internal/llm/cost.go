package llm

import (
	"math"
	"strings"

	"github.com/jonathan/career-extractor/internal/types"
)

// Pricing is USD per million tokens.
type Pricing struct {
	Input  float64
	Output float64
}

// modelPricing is matched by longest prefix.
var modelPricing = map[string]Pricing{
	"gemini-2.5-flash-lite": {Input: 0.10, Output: 0.40},
	"gemini-2.5-flash":      {Input: 0.30, Output: 2.50},
	"gemini-2.5-pro":        {Input: 1.25, Output: 10.00},
	"gemini-2.0-flash":      {Input: 0.10, Output: 0.40},
	"gemini-1.5-pro":        {Input: 1.25, Output: 5.00},
	"gemini-1.5-flash":      {Input: 0.075, Output: 0.30},
}

var fallbackPricing = modelPricing["gemini-2.5-flash"]

// PricingFor returns the price list entry for a model name.
func PricingFor(model string) Pricing {
	model = strings.ToLower(strings.TrimPrefix(model, "models/"))
	best, bestLen := fallbackPricing, 0
	for prefix, p := range modelPricing {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best, bestLen = p, len(prefix)
		}
	}
	return best
}

// EstimateCost returns the USD cost of a call, rounded to 6 decimals.
func EstimateCost(model string, usage types.TokenUsage) float64 {
	p := PricingFor(model)
	cost := float64(usage.PromptTokens)*p.Input/1e6 + float64(usage.CompletionTokens)*p.Output/1e6
	return math.Round(cost*1e6) / 1e6
}
