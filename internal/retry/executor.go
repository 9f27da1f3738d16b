package retry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/parsing"
	"github.com/jonathan/career-extractor/internal/prompts"
	"github.com/jonathan/career-extractor/internal/types"
	"github.com/jonathan/career-extractor/internal/validation"
)

// plainCost is the relative cost of an unmodified extraction call
const plainCost = 1

// PassRequest describes one extraction pass
type PassRequest struct {
	Category types.Category
	// Prompt is the full pass prompt used by the initial attempt
	Prompt string
	// Input is what Prompt was built from; strategies rebuild prompts from it
	Input     prompts.PassInput
	Structure *types.ResumeStructure
	Tier      llm.ModelTier
	Complete  llm.CompletionFunc
	// Validation carries the rule context; Data and Categories are set per candidate
	Validation validation.Input
}

// Candidate is a validated result kept as the best so far
type Candidate struct {
	Data       *types.ExtractedData
	Validation types.ValidationResult
	Strategy   string
	Attempt    int
}

// Run is the state of a pass handed to recovery strategies
type Run struct {
	Request PassRequest
	Attempt int
	Class   ErrorClass
	// LastRaw is the text of the most recent completion response
	LastRaw string
	LastErr error
	// LastValidation is the validation of the most recent parsed candidate
	LastValidation *types.ValidationResult
	Best           *Candidate

	exec *Executor
}

// Complete invokes the pass's completion function under the call timeout and
// parses the response for the pass category.
func (r *Run) Complete(ctx context.Context, req llm.CompletionRequest, strategy string) (*parsing.CategoryOutput, error) {
	req.Category = r.Request.Category
	req.Attempt = r.Attempt
	req.Strategy = strategy
	if req.Tier == "" {
		req.Tier = r.Request.Tier
	}
	return r.exec.call(ctx, r, req)
}

// Executor runs passes
type Executor struct {
	cfg        Config
	engine     *validation.Engine
	strategies []Strategy
	observer   Observer
	logger     *zap.Logger
}

// Option configures an Executor
type Option func(*Executor)

// WithConfig sets attempt bounds and timing
func WithConfig(cfg Config) Option {
	return func(e *Executor) { e.cfg = cfg.withDefaults() }
}

// WithStrategies replaces the default recovery strategies
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Executor) { e.strategies = strategies }
}

// WithObserver receives calls, validations and retry events
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor creates an executor; a nil engine uses the default rules
func NewExecutor(engine *validation.Engine, opts ...Option) *Executor {
	e := &Executor{
		cfg:        DefaultConfig(),
		strategies: DefaultStrategies(),
		observer:   nopObserver{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if engine == nil {
		engine = validation.NewEngine(e.logger)
	}
	e.engine = engine
	return e
}

// Config returns the executor bounds
func (e *Executor) Config() Config {
	return e.cfg
}

// Execute runs the pass to acceptance or exhaustion. It never panics and
// always returns a well-formed result.
func (e *Executor) Execute(ctx context.Context, req PassRequest) types.RetryResult {
	if req.Input.Category == "" {
		req.Input.Category = req.Category
	}
	meta := types.RetryMetadata{StrategiesTried: []string{}}
	run := &Run{Request: req, exec: e}
	log := e.logger.With(zap.String("category", string(req.Category)))

	if req.Complete == nil {
		return e.failure(run, meta, types.RetryErrorExhausted, errors.New("no completion function"))
	}

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return e.failure(run, meta, types.RetryErrorCanceled, err)
		}
		run.Attempt = attempt
		meta.Attempts = attempt

		var strategies []Strategy
		if attempt > 1 {
			e.observer.OnEvent(ctx, types.EventRetryAttempt, req.Category,
				fmt.Sprintf("attempt %d after %s", attempt, run.Class),
				map[string]any{"attempt": attempt, "class": string(run.Class)})

			// 1. Back off after a transient failure
			if run.Class == ClassTransient {
				delay := backoffDelay(e.cfg.BackoffBase, attempt-1)
				log.Debug("backing off", zap.Int("attempt", attempt), zap.Duration("delay", delay))
				if err := sleep(ctx, delay); err != nil {
					return e.failure(run, meta, types.RetryErrorCanceled, err)
				}
			}
			strategies = e.applicable(run.Class, attempt)
		}

		// 2. Plain extraction when no recovery strategy applies
		if len(strategies) == 0 {
			label := LabelInitial
			if attempt > 1 {
				label = LabelRecovery
			}
			meta.TotalCost += plainCost
			out, err := run.Complete(ctx, llm.CompletionRequest{Prompt: req.Prompt}, label)
			if e.consider(ctx, run, label, out, err) {
				return e.success(run, meta, label)
			}
			continue
		}

		// 3. Recovery strategies in cost order
		for _, s := range strategies {
			if ctx.Err() != nil {
				break
			}
			meta.StrategiesTried = append(meta.StrategiesTried, s.Name())
			meta.TotalCost += s.Cost()
			e.observer.OnEvent(ctx, types.EventStrategyApplied, req.Category,
				fmt.Sprintf("applying %s", s.Name()),
				map[string]any{"strategy": s.Name(), "cost": s.Cost(), "attempt": attempt, "class": string(run.Class)})

			out, err := e.apply(ctx, s, run)
			if e.consider(ctx, run, s.Name(), out, err) {
				return e.success(run, meta, s.Name())
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return e.failure(run, meta, types.RetryErrorCanceled, err)
	}
	return e.failure(run, meta, types.RetryErrorExhausted, run.LastErr)
}

// applicable returns the strategies for class and attempt, cheapest first
func (e *Executor) applicable(class ErrorClass, attempt int) []Strategy {
	var out []Strategy
	for _, s := range e.strategies {
		if s.Applicable(class, attempt) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost() < out[j].Cost() })
	return out
}

func (e *Executor) apply(ctx context.Context, s Strategy, run *Run) (out *parsing.CategoryOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &Error{Strategy: s.Name(), Message: "panic", Cause: fmt.Errorf("%v", r)}
		}
	}()
	return s.Apply(ctx, run)
}

// consider validates a candidate, keeps it if it beats the best so far and
// reports whether it is accepted.
func (e *Executor) consider(ctx context.Context, run *Run, label string, out *parsing.CategoryOutput, err error) bool {
	log := e.logger.With(zap.String("category", string(run.Request.Category)), zap.String("strategy", label), zap.Int("attempt", run.Attempt))
	if err == nil && (out == nil || out.Data == nil) {
		err = &Error{Strategy: label, Message: "no output"}
	}
	if err != nil {
		run.LastErr = err
		run.Class = Classify(err, nil)
		log.Warn("attempt failed", zap.String("class", string(run.Class)), zap.Error(err))
		return false
	}

	in := run.Request.Validation
	in.Data = out.Data.Normalize()
	in.Categories = []types.Category{run.Request.Category}
	result := e.engine.Validate(ctx, in)
	e.observer.OnValidation(ctx, run.Request.Category, run.Attempt, result)

	run.LastErr = nil
	run.LastValidation = &result
	run.Class = Classify(nil, &result)

	if run.Best != nil && result.Confidence <= run.Best.Validation.Confidence {
		log.Debug("candidate discarded",
			zap.Float64("confidence", result.Confidence),
			zap.Float64("best", run.Best.Validation.Confidence))
		return false
	}
	run.Best = &Candidate{Data: in.Data, Validation: result, Strategy: label, Attempt: run.Attempt}
	log.Debug("candidate kept", zap.Float64("confidence", result.Confidence), zap.Bool("passed", result.Passed))

	return result.Passed || result.Confidence >= e.cfg.MinConfidence
}

func (e *Executor) call(ctx context.Context, run *Run, req llm.CompletionRequest) (out *parsing.CategoryOutput, err error) {
	callCtx := ctx
	if e.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.cfg.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := invoke(callCtx, run.Request.Complete, req)
	latency := time.Since(start)
	if err == nil && resp == nil {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("completion call timed out after %s: %w", e.cfg.CallTimeout, err)
		}
		e.observer.OnCall(ctx, Call{Category: req.Category, Attempt: req.Attempt, Strategy: req.Strategy, Prompt: req.Prompt, Err: err, Latency: latency})
		return nil, err
	}

	if resp.Latency == 0 {
		resp.Latency = latency
	}
	run.LastRaw = resp.Text
	out, err = parsing.ParseCategoryOutput(req.Category, resp.Text)
	e.observer.OnCall(ctx, Call{
		Category: req.Category,
		Attempt:  req.Attempt,
		Strategy: req.Strategy,
		Prompt:   req.Prompt,
		Response: resp,
		Output:   out,
		Err:      err,
		Latency:  resp.Latency,
	})
	return out, err
}

// invoke shields the executor from a panicking completion function
func invoke(ctx context.Context, fn llm.CompletionFunc, req llm.CompletionRequest) (resp *llm.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("completion function panicked: %v", r)
		}
	}()
	return fn(ctx, req)
}

func (e *Executor) success(run *Run, meta types.RetryMetadata, label string) types.RetryResult {
	meta.FinalStrategy = label
	v := run.Best.Validation
	e.logger.Info("pass accepted",
		zap.String("category", string(run.Request.Category)),
		zap.String("strategy", label),
		zap.Int("attempts", meta.Attempts),
		zap.Float64("confidence", v.Confidence))
	return types.RetryResult{
		Success:    true,
		Data:       run.Best.Data,
		Validation: &v,
		Metadata:   meta,
	}
}

func (e *Executor) failure(run *Run, meta types.RetryMetadata, kind types.RetryErrorKind, lastErr error) types.RetryResult {
	result := types.RetryResult{
		Data: types.NewExtractedData(),
		Validation: &types.ValidationResult{
			Issues:             []types.ValidationIssue{},
			Recommendations:    []string{},
			RequiresUserReview: true,
		},
		Metadata: meta,
	}
	if run.Best != nil {
		v := run.Best.Validation
		result.Data = run.Best.Data
		result.Validation = &v
		result.Metadata.FinalStrategy = run.Best.Strategy
	}

	msg := fmt.Sprintf("%s pass not accepted after %d attempt(s)", run.Request.Category, meta.Attempts)
	if kind == types.RetryErrorCanceled {
		msg = fmt.Sprintf("%s pass canceled", run.Request.Category)
	}
	result.Error = &types.RetryError{Kind: kind, Message: msg}
	if lastErr != nil {
		result.Error.LastError = lastErr.Error()
	}

	e.logger.Warn("pass not accepted",
		zap.String("category", string(run.Request.Category)),
		zap.String("kind", string(kind)),
		zap.Int("attempts", meta.Attempts),
		zap.Float64("best_confidence", result.Validation.Confidence))
	return result
}
