package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/jonathan/career-extractor/internal/pipeline"
)

// Extractor runs one extraction session
type Extractor interface {
	OrchestrateExtraction(ctx context.Context, cfg pipeline.Config) (*pipeline.Result, error)
}

// Handler processes one delivery: it decodes the job, loads the résumé,
// runs the extraction and settles the delivery.
type Handler struct {
	extractor Extractor
	source    Source
	publisher Publisher
	defaults  pipeline.Config
	logger    *zap.Logger
	now       func() time.Time
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithSource sets where ResumeKey jobs are loaded from
func WithSource(s Source) HandlerOption {
	return func(h *Handler) { h.source = s }
}

// WithPublisher sets where status updates go
func WithPublisher(p Publisher) HandlerOption {
	return func(h *Handler) { h.publisher = p }
}

// WithDefaults sets the pipeline settings applied to every job
func WithDefaults(cfg pipeline.Config) HandlerOption {
	return func(h *Handler) { h.defaults = cfg }
}

// WithHandlerLogger sets the logger
func WithHandlerLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates a handler around extractor
func NewHandler(extractor Extractor, opts ...HandlerOption) *Handler {
	h := &Handler{extractor: extractor, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle settles d exactly once. Malformed jobs and unreadable résumés are
// rejected without requeue; jobs interrupted by shutdown are requeued; every
// job that reached the pipeline is acked, its outcome recorded in the session.
func (h *Handler) Handle(ctx context.Context, d amqp.Delivery) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		h.logger.Warn("discarding malformed job", zap.Error(err), zap.Int("bytes", len(d.Body)))
		h.settle(d, nackDiscard)
		return
	}
	log := h.logger.With(zap.String("job_id", job.JobID))
	if err := job.Validate(); err != nil {
		log.Warn("discarding invalid job", zap.Error(err))
		if job.JobID != "" {
			h.publish(ctx, log, StatusUpdate{JobID: job.JobID, Status: StatusFailed, Message: err.Error()})
		}
		h.settle(d, nackDiscard)
		return
	}

	h.publish(ctx, log, StatusUpdate{JobID: job.JobID, Status: StatusProcessing, Message: "extraction started"})

	text, err := h.resumeText(ctx, &job)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("job interrupted while loading résumé, requeueing")
			h.settle(d, nackRequeue)
			return
		}
		log.Error("failed to load résumé", zap.Error(err))
		h.publish(ctx, log, StatusUpdate{JobID: job.JobID, Status: StatusFailed, Message: err.Error()})
		h.settle(d, nackDiscard)
		return
	}

	cfg := h.defaults
	cfg.ResumeText = text
	cfg.VaultID = job.VaultID
	cfg.UserID = job.UserID
	cfg.TargetRole = job.TargetRole
	cfg.TargetIndustry = job.TargetIndustry
	cfg.Metadata = map[string]any{"job_id": job.JobID}
	for k, v := range job.Metadata {
		cfg.Metadata[k] = v
	}

	result, err := h.extractor.OrchestrateExtraction(ctx, cfg)
	var sessionID *uuid.UUID
	if result.Started() {
		id := result.SessionID
		sessionID = &id
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			log.Info("job interrupted by shutdown, requeueing", zap.Error(err))
			h.settle(d, nackRequeue)
			return
		}
		log.Error("extraction failed", zap.Error(err))
		h.publish(ctx, log, StatusUpdate{JobID: job.JobID, SessionID: sessionID, Status: StatusFailed, Message: err.Error()})
		if sessionID == nil {
			h.settle(d, nackDiscard)
			return
		}
		h.settle(d, ack)
		return
	}

	h.publish(ctx, log, StatusUpdate{
		JobID:      job.JobID,
		SessionID:  sessionID,
		Status:     StatusCompleted,
		Message:    fmt.Sprintf("extracted %d items", result.Data.Total()),
		Confidence: result.Validation.Confidence,
		ItemCount:  result.Data.Total(),
	})
	log.Info("job completed",
		zap.String("session_id", result.SessionID.String()),
		zap.Int("items", result.Data.Total()),
		zap.Float64("confidence", result.Validation.Confidence))
	h.settle(d, ack)
}

func (h *Handler) resumeText(ctx context.Context, job *Job) (string, error) {
	if job.ResumeText != "" {
		return job.ResumeText, nil
	}
	if h.source == nil {
		return "", fmt.Errorf("job references %s but no résumé source is configured", job.ResumeKey)
	}
	return h.source.Fetch(ctx, job.ResumeKey)
}

// publish never fails the job; a lost status update only affects listeners
func (h *Handler) publish(ctx context.Context, log *zap.Logger, update StatusUpdate) {
	if h.publisher == nil {
		return
	}
	update.Timestamp = h.now().UTC()
	if err := h.publisher.Publish(context.WithoutCancel(ctx), update); err != nil {
		log.Warn("failed to publish status update", zap.String("status", string(update.Status)), zap.Error(err))
	}
}

type settlement int

const (
	ack settlement = iota
	nackDiscard
	nackRequeue
)

func (h *Handler) settle(d amqp.Delivery, s settlement) {
	var err error
	switch s {
	case ack:
		err = d.Ack(false)
	case nackDiscard:
		err = d.Nack(false, false)
	case nackRequeue:
		err = d.Nack(false, true)
	}
	if err != nil {
		h.logger.Warn("failed to settle delivery", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(err))
	}
}
