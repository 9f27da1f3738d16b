package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/logger"
	"github.com/jonathan/career-extractor/internal/types"
)

// Recorder writes session records to a Store. Every write is fire-and-forget:
// failures are logged and never returned, so extraction is never aborted by
// the store.
type Recorder struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder; a nil store records nothing
func NewRecorder(store Store, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: store, logger: log, now: time.Now}
}

// Store returns the underlying store
func (r *Recorder) Store() Store {
	return r.store
}

// StartSession creates and persists a running session
func (r *Recorder) StartSession(ctx context.Context, vaultID, userID, version string, metadata map[string]any) *types.ExtractionSession {
	session := &types.ExtractionSession{
		ID:        uuid.New(),
		VaultID:   vaultID,
		UserID:    userID,
		Version:   version,
		Status:    types.SessionRunning,
		StartedAt: r.now().UTC(),
		Metadata:  metadata,
	}
	if r.store != nil {
		if err := r.store.CreateSession(ctx, session); err != nil {
			r.warn("create session", session.ID, err)
		}
	}
	r.LogEvent(ctx, session.ID, types.ExtractionEvent{
		EventType: types.EventSessionStarted,
		Message:   fmt.Sprintf("extraction started for vault %s", vaultID),
	})
	return session
}

// LogEvent appends an event. Retry attempts are tagged so reports can count them.
func (r *Recorder) LogEvent(ctx context.Context, sessionID uuid.UUID, event types.ExtractionEvent) {
	event.ID = uuid.New()
	event.SessionID = sessionID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now().UTC()
	}
	if event.EventType == types.EventRetryAttempt && !event.HasTag(types.TagRetry) {
		event.Tags = append(event.Tags, types.TagRetry)
	}
	if r.store == nil {
		return
	}
	if err := r.store.InsertEvent(ctx, &event); err != nil {
		r.warn("insert event", sessionID, err, zap.String("event_type", event.EventType))
	}
}

// LogProgress records a progress event for a phase
func (r *Recorder) LogProgress(ctx context.Context, sessionID uuid.UUID, phase, message string, percent float64) {
	r.LogEvent(ctx, sessionID, types.ExtractionEvent{
		EventType: types.EventProgress,
		Phase:     phase,
		Message:   message,
		Data:      map[string]any{"percent": percent},
	})
}

// CaptureAIResponse stores one completion response. Cost is estimated from
// the model and usage when not already set.
func (r *Recorder) CaptureAIResponse(ctx context.Context, sessionID uuid.UUID, capture types.AIResponseCapture) {
	capture.ID = uuid.New()
	capture.SessionID = sessionID
	if capture.CreatedAt.IsZero() {
		capture.CreatedAt = r.now().UTC()
	}
	if capture.CostUSD == 0 {
		capture.CostUSD = llm.EstimateCost(capture.Model, capture.Usage)
	}
	if r.store == nil {
		return
	}
	if err := r.store.InsertAIResponse(ctx, &capture); err != nil {
		r.warn("insert ai response", sessionID, err, zap.String("category", string(capture.Category)))
	}
}

// LogValidation stores one validation run; an empty category marks the final cross-validation
func (r *Recorder) LogValidation(ctx context.Context, sessionID uuid.UUID, category types.Category, attempt int, result types.ValidationResult) {
	issues := result.Issues
	if issues == nil {
		issues = []types.ValidationIssue{}
	}
	entry := types.ValidationLog{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Category:   category,
		Attempt:    attempt,
		Passed:     result.Passed,
		Confidence: result.Confidence,
		Issues:     issues,
		CreatedAt:  r.now().UTC(),
	}
	if r.store == nil {
		return
	}
	if err := r.store.InsertValidationLog(ctx, &entry); err != nil {
		r.warn("insert validation log", sessionID, err)
	}
}

// SaveCheckpoint stores a named snapshot. snapshot is flattened to a JSON object.
func (r *Recorder) SaveCheckpoint(ctx context.Context, sessionID uuid.UUID, phase string, snapshot any) {
	m, err := ToMap(snapshot)
	if err != nil {
		r.warn("encode checkpoint", sessionID, err, zap.String("phase", phase))
		return
	}
	cp := types.Checkpoint{
		ID:        uuid.New(),
		SessionID: sessionID,
		Phase:     phase,
		Snapshot:  m,
		CreatedAt: r.now().UTC(),
	}
	if r.store == nil {
		return
	}
	if err := r.store.InsertCheckpoint(ctx, &cp); err != nil {
		r.warn("insert checkpoint", sessionID, err, zap.String("phase", phase))
	}
}

// EndSession marks the session terminal and stores the final snapshot
func (r *Recorder) EndSession(ctx context.Context, session *types.ExtractionSession, status types.SessionStatus, finalResult any) {
	if session == nil {
		return
	}
	ended := r.now().UTC()
	session.Status = status
	session.EndedAt = &ended
	if finalResult != nil {
		m, err := ToMap(finalResult)
		if err != nil {
			r.warn("encode final result", session.ID, err)
		} else {
			session.FinalResult = m
		}
	}

	r.LogEvent(ctx, session.ID, types.ExtractionEvent{
		EventType: types.EventSessionEnded,
		Message:   fmt.Sprintf("extraction %s", status),
		Data:      map[string]any{"duration_ms": ended.Sub(session.StartedAt).Milliseconds()},
	})
	if r.store == nil {
		return
	}
	if err := r.store.UpdateSession(ctx, session); err != nil {
		r.warn("update session", session.ID, err)
	}
}

// GenerateReport rebuilds the session report from the store
func (r *Recorder) GenerateReport(ctx context.Context, sessionID uuid.UUID) (*types.SessionReport, error) {
	if r.store == nil {
		return nil, ErrSessionNotFound
	}
	return GenerateReport(ctx, r.store, sessionID)
}

func (r *Recorder) warn(op string, sessionID uuid.UUID, err error, fields ...zap.Field) {
	fields = append(fields, zap.String(logger.FieldSession, sessionID.String()), zap.Error(err))
	r.logger.Warn("observability: failed to "+op, fields...)
}

// ToMap converts a value into a generic JSON object
func ToMap(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("snapshot is not a JSON object: %w", err)
	}
	return m, nil
}
