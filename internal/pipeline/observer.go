package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/career-extractor/internal/logger"
	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/retry"
	"github.com/jonathan/career-extractor/internal/types"
)

// phasePasses labels events raised inside category passes
const phasePasses = "passes"

const maxLoggedResponse = 500

// sessionObserver records what the executor does against one session
type sessionObserver struct {
	recorder  *observability.Recorder
	sessionID uuid.UUID
	version   string
	logger    *zap.Logger
}

func (o *sessionObserver) OnCall(ctx context.Context, call retry.Call) {
	if call.Response == nil {
		o.recorder.LogEvent(ctx, o.sessionID, types.ExtractionEvent{
			EventType: types.EventError,
			Phase:     phasePasses,
			Category:  call.Category,
			Message:   fmt.Sprintf("completion call failed: %v", call.Err),
			Data: map[string]any{
				"attempt":    call.Attempt,
				"strategy":   call.Strategy,
				"latency_ms": call.Latency.Milliseconds(),
			},
		})
		return
	}

	capture := types.AIResponseCapture{
		Category:      call.Category,
		Attempt:       call.Attempt,
		Strategy:      call.Strategy,
		Model:         call.Response.Model,
		PromptVersion: o.version,
		RawResponse:   call.Response.Text,
		Usage:         call.Response.Usage,
		LatencyMs:     call.Latency.Milliseconds(),
	}
	if call.Output != nil {
		if call.Output.JSON != "" && json.Valid([]byte(call.Output.JSON)) {
			capture.ParsedResponse = json.RawMessage(call.Output.JSON)
		}
		capture.Reasoning = call.Output.Reasoning
		capture.Confidence = math.Round(call.Output.Data.AverageConfidence()*1000) / 10
	}
	o.recorder.CaptureAIResponse(ctx, o.sessionID, capture)

	o.logger.Debug("completion response",
		zap.String(logger.FieldCategory, string(call.Category)),
		zap.String(logger.FieldModel, call.Response.Model),
		zap.String("strategy", call.Strategy),
		zap.Int("attempt", call.Attempt),
		zap.String("response", logger.TruncateForLog(call.Response.Text, maxLoggedResponse)),
		zap.NamedError("parse_error", call.Err))
}

func (o *sessionObserver) OnValidation(ctx context.Context, category types.Category, attempt int, result types.ValidationResult) {
	o.recorder.LogValidation(ctx, o.sessionID, category, attempt, result)
}

func (o *sessionObserver) OnEvent(ctx context.Context, eventType string, category types.Category, message string, data map[string]any) {
	o.recorder.LogEvent(ctx, o.sessionID, types.ExtractionEvent{
		EventType: eventType,
		Phase:     phasePasses,
		Category:  category,
		Message:   message,
		Data:      data,
	})
}
