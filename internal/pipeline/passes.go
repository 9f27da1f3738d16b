package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-extractor/internal/logger"
	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/pipeline/steps"
	"github.com/jonathan/career-extractor/internal/prompts"
	"github.com/jonathan/career-extractor/internal/retry"
	"github.com/jonathan/career-extractor/internal/types"
	"github.com/jonathan/career-extractor/internal/validation"
)

// runPasses executes one pass per category in strategy order and merges the
// accepted buckets into result in that same order.
func (o *Orchestrator) runPasses(ctx context.Context, sessionID uuid.UUID, exec *retry.Executor, cfg Config, result *Result, log *zap.Logger) {
	order := result.Context.Strategy.PassOrder
	if len(order) == 0 {
		order = types.AllCategories
	}
	outcomes := make([]PassResult, len(order))

	if cfg.MaxConcurrentPasses <= 1 {
		for i, category := range order {
			if ctx.Err() != nil {
				return
			}
			outcomes[i] = o.runPass(ctx, sessionID, exec, cfg, result, category, result.Data, log)
			o.collect(result, outcomes[i])
			o.emit(ctx, sessionID, steps.PassPhase(category), category,
				fmt.Sprintf("pass %s finished", category), passPercent(i, len(order)))
		}
		return
	}

	// Passes do not see each other's output when fanned out; the final
	// cross-validation covers cross-bucket checks.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrentPasses)
	for i, category := range order {
		g.Go(func() error {
			outcomes[i] = o.runPass(gctx, sessionID, exec, cfg, result, category, nil, log)
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		return
	}
	for i, outcome := range outcomes {
		o.collect(result, outcome)
		o.emit(ctx, sessionID, steps.PassPhase(outcome.Category), outcome.Category,
			fmt.Sprintf("pass %s finished", outcome.Category), passPercent(i, len(order)))
	}
}

// runPass runs a single category. prior is the data accepted so far, or nil.
func (o *Orchestrator) runPass(ctx context.Context, sessionID uuid.UUID, exec *retry.Executor, cfg Config, result *Result, category types.Category, prior *types.ExtractedData, log *zap.Logger) PassResult {
	log = log.With(zap.String(logger.FieldCategory, string(category)))
	phase := steps.PassPhase(category)
	pc := result.Context

	complete, ok := o.registry.Lookup(category)
	if !ok {
		log.Warn("no completion function registered, skipping pass")
		o.recorder.LogEvent(ctx, sessionID, types.ExtractionEvent{
			EventType: types.EventError,
			Phase:     phase,
			Category:  category,
			Message:   fmt.Sprintf("no completion function registered for %s", category),
		})
		o.recorder.LogEvent(ctx, sessionID, types.ExtractionEvent{
			EventType: types.EventPassSkipped,
			Phase:     phase,
			Category:  category,
			Message:   "pass skipped",
		})
		o.recorder.SaveCheckpoint(ctx, sessionID, phase, observability.PassSnapshot{
			Category: string(category),
			Skipped:  true,
		})
		return PassResult{Category: category, Skipped: true, Result: skippedResult()}
	}

	o.recorder.LogEvent(ctx, sessionID, types.ExtractionEvent{
		EventType: types.EventPassStarted,
		Phase:     phase,
		Category:  category,
		Message:   fmt.Sprintf("starting %s pass", category),
	})

	input := prompts.PassInput{
		Category:     category,
		ResumeText:   cfg.ResumeText,
		Role:         pc.Role,
		Framework:    pc.Framework,
		FocusAreas:   pc.Strategy.FocusAreas,
		UseFramework: pc.Strategy.ShouldUseFramework,
	}

	var rr types.RetryResult
	prompt, err := prompts.BuildPassPrompt(input)
	if err != nil {
		log.Error("failed to build pass prompt", zap.Error(err))
		o.recorder.LogEvent(ctx, sessionID, types.ExtractionEvent{
			EventType: types.EventError,
			Phase:     phase,
			Category:  category,
			Message:   fmt.Sprintf("failed to build prompt: %v", err),
		})
		rr = types.RetryResult{
			Data:       types.NewExtractedData(),
			Validation: &types.ValidationResult{Issues: []types.ValidationIssue{}},
			Error: &types.RetryError{
				Kind:      types.RetryErrorExhausted,
				Message:   "failed to build prompt",
				LastError: err.Error(),
			},
			Metadata: types.RetryMetadata{StrategiesTried: []string{}},
		}
	} else {
		vin := validation.Input{
			ResumeText: cfg.ResumeText,
			Role:       pc.Role,
			Prior:      prior,
		}
		if pc.Strategy.ShouldUseFramework && pc.Framework != nil {
			vin.Framework = pc.Framework.Framework
		}
		rr = exec.Execute(ctx, retry.PassRequest{
			Category:   category,
			Prompt:     prompt,
			Input:      input,
			Structure:  pc.Structure,
			Tier:       pc.Strategy.RecommendedTier,
			Complete:   complete,
			Validation: vin,
		})
	}

	snap := passSnapshot(category, rr)
	o.recorder.SaveCheckpoint(ctx, sessionID, phase, snap)
	o.recorder.LogEvent(ctx, sessionID, types.ExtractionEvent{
		EventType: types.EventPassCompleted,
		Phase:     phase,
		Category:  category,
		Message:   fmt.Sprintf("%s pass finished: success=%t items=%d", category, rr.Success, snap.ItemCount),
		Data: map[string]any{
			"success":    rr.Success,
			"attempts":   rr.Metadata.Attempts,
			"total_cost": rr.Metadata.TotalCost,
			"confidence": snap.Confidence,
		},
	})
	log.Info("pass finished",
		zap.Bool("success", rr.Success),
		zap.Int("attempts", rr.Metadata.Attempts),
		zap.String("final_strategy", rr.Metadata.FinalStrategy),
		zap.Int("items", snap.ItemCount))
	return PassResult{Category: category, Result: rr}
}

// collect folds one pass outcome into the session result
func (o *Orchestrator) collect(result *Result, p PassResult) {
	if p.Category == "" {
		return
	}
	result.Metadata.Passes = append(result.Metadata.Passes, p)
	if p.Skipped {
		return
	}
	result.Metadata.TotalCost += p.Result.Metadata.TotalCost
	if p.Result.Metadata.Attempts > 1 {
		result.Metadata.RetryCount += p.Result.Metadata.Attempts - 1
	}
	// exhausted passes still contribute their best attempt
	result.Data.Append(p.Category, p.Result.Data)
}

func passSnapshot(category types.Category, rr types.RetryResult) observability.PassSnapshot {
	snap := observability.PassSnapshot{
		Category:      string(category),
		Success:       rr.Success,
		Attempts:      rr.Metadata.Attempts,
		FinalStrategy: rr.Metadata.FinalStrategy,
		TotalCost:     rr.Metadata.TotalCost,
		ItemCount:     rr.Data.Count(category),
		Strategies:    rr.Metadata.StrategiesTried,
	}
	if rr.Validation != nil {
		snap.Confidence = rr.Validation.Confidence
	}
	if rr.Error != nil {
		snap.Error = rr.Error.Message
	}
	return snap
}

func skippedResult() types.RetryResult {
	return types.RetryResult{
		Data:       types.NewExtractedData(),
		Validation: &types.ValidationResult{Issues: []types.ValidationIssue{}},
		Metadata:   types.RetryMetadata{StrategiesTried: []string{}},
	}
}

func passPercent(i, n int) float64 {
	if n == 0 {
		return percentPasses
	}
	return percentAnalysis + (percentPasses-percentAnalysis)*float64(i+1)/float64(n)
}
