package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/career-extractor/internal/frameworks"
	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/logger"
	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/parsing"
	"github.com/jonathan/career-extractor/internal/pipeline/steps"
	"github.com/jonathan/career-extractor/internal/retry"
	"github.com/jonathan/career-extractor/internal/strategy"
	"github.com/jonathan/career-extractor/internal/types"
	"github.com/jonathan/career-extractor/internal/validation"
)

// progress milestones
const (
	percentAnalysis = 20.0
	percentPasses   = 90.0
	percentDone     = 100.0
)

// Orchestrator runs extraction sessions. It holds no per-session state and
// may run several sessions concurrently.
type Orchestrator struct {
	recorder   *observability.Recorder
	registry   llm.Registry
	library    *frameworks.Library
	engine     *validation.Engine
	retryCfg   retry.Config
	strategies []retry.Strategy
	progress   observability.MultiSink
	logger     *zap.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgress adds progress sinks; progress is always recorded as session events
func WithProgress(sinks ...observability.ProgressSink) Option {
	return func(o *Orchestrator) { o.progress = append(o.progress, sinks...) }
}

// WithLibrary sets the framework library used for matching
func WithLibrary(lib *frameworks.Library) Option {
	return func(o *Orchestrator) { o.library = lib }
}

// WithEngine replaces the default validation engine
func WithEngine(e *validation.Engine) Option {
	return func(o *Orchestrator) { o.engine = e }
}

// WithRetryConfig sets the executor bounds for every pass
func WithRetryConfig(cfg retry.Config) Option {
	return func(o *Orchestrator) { o.retryCfg = cfg }
}

// WithStrategies replaces the default recovery strategies
func WithStrategies(strategies ...retry.Strategy) Option {
	return func(o *Orchestrator) { o.strategies = strategies }
}

// New creates an orchestrator writing to store and calling the completion
// functions in registry. A nil store records nothing.
func New(store observability.Store, registry llm.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		retryCfg: retry.DefaultConfig(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.recorder = observability.NewRecorder(store, o.logger)
	o.progress = append(observability.MultiSink{observability.RecorderSink{Recorder: o.recorder}}, o.progress...)
	if o.engine == nil {
		o.engine = validation.NewEngine(o.logger)
	}
	return o
}

// Recorder returns the recorder sessions are written through
func (o *Orchestrator) Recorder() *observability.Recorder {
	return o.recorder
}

// OrchestrateExtraction runs one extraction session. Failures inside a pass
// are reported in the result; any other failure marks the session failed and
// is returned together with the best result available. An invalid request is
// rejected before a session starts: the error comes with an empty result whose
// Started reports false.
func (o *Orchestrator) OrchestrateExtraction(ctx context.Context, cfg Config) (result *Result, err error) {
	if err := cfg.Validate(); err != nil {
		return newResult(uuid.Nil), err
	}
	cfg = cfg.withDefaults()
	retryCfg := o.retryCfg
	if cfg.MaxAttempts > 0 {
		retryCfg.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.MinConfidence > 0 {
		retryCfg.MinConfidence = cfg.MinConfidence
	}
	if err := retryCfg.Validate(); err != nil {
		return newResult(uuid.Nil), fmt.Errorf("invalid retry config: %w", err)
	}

	start := time.Now()
	session := o.recorder.StartSession(ctx, cfg.VaultID, cfg.UserID, cfg.Version, cfg.sessionMetadata())
	result = newResult(session.ID)
	log := logger.WithSession(o.logger, session.ID.String(), cfg.VaultID, cfg.UserID)
	log.Info("extraction started", zap.String("version", cfg.Version))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction panicked: %v", r)
		}
		result.Metadata.DurationMs = time.Since(start).Milliseconds()
		if err != nil {
			o.fail(ctx, session, result, err, log)
		}
	}()

	if err := o.analyze(ctx, session.ID, cfg, result, log); err != nil {
		return result, err
	}

	exec := retry.NewExecutor(o.engine, o.executorOptions(retryCfg, session.ID, cfg.Version, log)...)
	o.runPasses(ctx, session.ID, exec, cfg, result, log)
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("extraction interrupted: %w", err)
	}

	o.finalValidation(ctx, session.ID, cfg, result)

	result.Success = true
	result.Metadata.DurationMs = time.Since(start).Milliseconds()
	o.emit(ctx, session.ID, "complete", "", "extraction completed", percentDone)
	o.recorder.EndSession(ctx, session, types.SessionCompleted, result.snapshot(nil))
	log.Info("extraction completed",
		zap.Int64("duration_ms", result.Metadata.DurationMs),
		zap.Int("total_cost", result.Metadata.TotalCost),
		zap.Int("retries", result.Metadata.RetryCount),
		zap.Float64("confidence", result.Validation.Confidence))
	return result, nil
}

// analyze runs the structure, role, framework and strategy phases
func (o *Orchestrator) analyze(ctx context.Context, sessionID uuid.UUID, cfg Config, result *Result, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("extraction interrupted: %w", err)
	}

	safety := validation.CheckPromptSafety(cfg.ResumeText)
	result.Context.PromptSafe = safety.IsSafe
	if !safety.IsSafe {
		validation.LogInjectionWarning(log, safety, "resume")
		o.recorder.LogEvent(ctx, sessionID, types.ExtractionEvent{
			EventType: types.EventSafetyWarning,
			Phase:     steps.PhaseStructure,
			Message:   safety.Reason,
			Data:      map[string]any{"matches": safety.Matches},
		})
	}

	structure := parsing.ParseResumeStructure(cfg.ResumeText)
	result.Context.Structure = structure
	o.completePhase(ctx, sessionID, steps.PhaseStructure,
		fmt.Sprintf("parsed %d sections, %d words", len(structure.Sections), structure.WordCount), structure, 5)

	role := parsing.ResolveRoleInfo(structure, cfg.ResumeText, cfg.TargetRole, cfg.TargetIndustry)
	result.Context.Role = role
	o.completePhase(ctx, sessionID, steps.PhaseRole,
		fmt.Sprintf("role %s (%s, %s)", role.PrimaryRole, role.Industry, role.Seniority), role, 10)

	lib := o.library
	if lib == nil {
		var err error
		if lib, err = frameworks.Default(); err != nil {
			return fmt.Errorf("failed to load framework library: %w", err)
		}
	}
	fwctx := lib.Match(role.PrimaryRole, role.Industry)
	result.Context.Framework = fwctx
	o.completePhase(ctx, sessionID, steps.PhaseFramework,
		fmt.Sprintf("framework match %s (confidence %.0f)", fwctx.MatchQuality, fwctx.Confidence), fwctx, 15)

	plan := strategy.Build(structure, role, fwctx)
	result.Context.Strategy = plan
	o.completePhase(ctx, sessionID, steps.PhaseStrategy,
		fmt.Sprintf("strategy: tier %s, focus %v", plan.RecommendedTier, plan.FocusAreas), plan, percentAnalysis)

	log.Info("pre-extraction analysis complete",
		zap.String("role", role.PrimaryRole),
		zap.String("seniority", string(role.Seniority)),
		zap.String("framework_match", string(fwctx.MatchQuality)),
		zap.String("tier", string(plan.RecommendedTier)),
		zap.Strings("focus", plan.FocusAreas))
	return nil
}

func (o *Orchestrator) executorOptions(cfg retry.Config, sessionID uuid.UUID, version string, log *zap.Logger) []retry.Option {
	opts := []retry.Option{
		retry.WithConfig(cfg),
		retry.WithLogger(log),
		retry.WithObserver(&sessionObserver{
			recorder:  o.recorder,
			sessionID: sessionID,
			version:   version,
			logger:    log,
		}),
	}
	if len(o.strategies) > 0 {
		opts = append(opts, retry.WithStrategies(o.strategies...))
	}
	return opts
}

// finalValidation cross-validates the combined buckets
func (o *Orchestrator) finalValidation(ctx context.Context, sessionID uuid.UUID, cfg Config, result *Result) {
	in := validation.Input{
		Data:       result.Data,
		ResumeText: cfg.ResumeText,
		Role:       result.Context.Role,
	}
	if result.Context.Strategy.ShouldUseFramework && result.Context.Framework != nil {
		in.Framework = result.Context.Framework.Framework
	}
	final := o.engine.Validate(ctx, in)
	o.recorder.LogValidation(ctx, sessionID, "", 0, final)

	result.Validation = summarize(final)
	result.validated = true
	o.completePhase(ctx, sessionID, steps.PhaseFinalValidation,
		fmt.Sprintf("final validation confidence %.0f, passed %t", final.Confidence, final.Passed),
		map[string]any{
			"passed":          final.Passed,
			"confidence":      final.Confidence,
			"critical_issues": result.Validation.CriticalIssues,
			"total_items":     result.Data.Total(),
		}, 95)
}

// fail records a top-level failure. It uses a context detached from
// cancellation so the failure is still written when ctx is done.
func (o *Orchestrator) fail(ctx context.Context, session *types.ExtractionSession, result *Result, err error, log *zap.Logger) {
	ctx = context.WithoutCancel(ctx)
	result.Success = false
	log.Error("extraction failed", zap.Error(err))
	data := map[string]any{"error": err.Error()}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		data["canceled"] = true
	}
	o.recorder.LogEvent(ctx, session.ID, types.ExtractionEvent{
		EventType: types.EventError,
		Message:   fmt.Sprintf("extraction failed: %v", err),
		Data:      data,
	})
	o.recorder.EndSession(ctx, session, types.SessionFailed, result.snapshot(err))
}

// completePhase logs, checkpoints and reports a finished phase
func (o *Orchestrator) completePhase(ctx context.Context, sessionID uuid.UUID, phase, message string, snapshot any, percent float64) {
	o.recorder.LogEvent(ctx, sessionID, types.ExtractionEvent{
		EventType: types.EventPhaseCompleted,
		Phase:     phase,
		Message:   message,
	})
	o.recorder.SaveCheckpoint(ctx, sessionID, phase, snapshot)
	o.emit(ctx, sessionID, phase, "", message, percent)
}

func (o *Orchestrator) emit(ctx context.Context, sessionID uuid.UUID, phase string, category types.Category, message string, percent float64) {
	o.progress.Emit(ctx, observability.Progress{
		SessionID: sessionID,
		Phase:     phase,
		Category:  category,
		Message:   message,
		Percent:   percent,
		Time:      time.Now().UTC(),
	})
}
