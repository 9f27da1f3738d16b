package retry

import (
	"context"
	"time"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/parsing"
	"github.com/jonathan/career-extractor/internal/types"
)

// Call describes one completion call made during a pass
type Call struct {
	Category types.Category
	Attempt  int
	Strategy string
	Prompt   string
	// Response is nil when the call itself failed
	Response *llm.Response
	// Output is nil when the response could not be parsed
	Output *parsing.CategoryOutput
	Err    error
	// Latency covers the call only, not parsing
	Latency time.Duration
}

// Observer receives what happens inside a pass. Implementations must not block.
type Observer interface {
	OnCall(ctx context.Context, call Call)
	OnValidation(ctx context.Context, category types.Category, attempt int, result types.ValidationResult)
	OnEvent(ctx context.Context, eventType string, category types.Category, message string, data map[string]any)
}

type nopObserver struct{}

func (nopObserver) OnCall(context.Context, Call) {}

func (nopObserver) OnValidation(context.Context, types.Category, int, types.ValidationResult) {}

func (nopObserver) OnEvent(context.Context, string, types.Category, string, map[string]any) {}
