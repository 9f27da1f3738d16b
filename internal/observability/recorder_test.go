package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/career-extractor/internal/types"
)

var errStoreDown = errors.New("store down")

// failingStore rejects every write
type failingStore struct {
	*MemoryStore
}

func (failingStore) CreateSession(context.Context, *types.ExtractionSession) error {
	return errStoreDown
}

func (failingStore) UpdateSession(context.Context, *types.ExtractionSession) error {
	return errStoreDown
}

func (failingStore) InsertEvent(context.Context, *types.ExtractionEvent) error {
	return errStoreDown
}

func (failingStore) InsertAIResponse(context.Context, *types.AIResponseCapture) error {
	return errStoreDown
}

func (failingStore) InsertValidationLog(context.Context, *types.ValidationLog) error {
	return errStoreDown
}

func (failingStore) InsertCheckpoint(context.Context, *types.Checkpoint) error {
	return errStoreDown
}

func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(100 * time.Millisecond)
		return t
	}
}

func TestRecorder_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := NewRecorder(store, zap.NewNop())
	rec.now = fixedClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))

	session := rec.StartSession(ctx, "vault-1", "user-1", "extraction-v1", map[string]any{"source": "test"})
	require.NotNil(t, session)
	assert.Equal(t, types.SessionRunning, session.Status)

	rec.EndSession(ctx, session, types.SessionCompleted, map[string]any{"success": true})

	got, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionCompleted, got.Status)
	require.NotNil(t, got.EndedAt)
	assert.True(t, got.EndedAt.After(got.StartedAt))
	assert.Equal(t, true, got.FinalResult["success"])

	events, _ := store.ListEvents(ctx, session.ID)
	require.Len(t, events, 2)
	assert.Equal(t, types.EventSessionStarted, events[0].EventType)
	assert.Equal(t, types.EventSessionEnded, events[1].EventType)
}

func TestRecorder_LogEventTagsRetries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := NewRecorder(store, nil)
	id := uuid.New()

	rec.LogEvent(ctx, id, types.ExtractionEvent{EventType: types.EventRetryAttempt, Message: "attempt 2"})
	rec.LogEvent(ctx, id, types.ExtractionEvent{EventType: types.EventRetryAttempt, Tags: []string{types.TagRetry}})
	rec.LogEvent(ctx, id, types.ExtractionEvent{EventType: types.EventPassStarted})

	events, _ := store.ListEvents(ctx, id)
	require.Len(t, events, 3)
	assert.Equal(t, []string{types.TagRetry}, events[0].Tags)
	assert.Equal(t, []string{types.TagRetry}, events[1].Tags)
	assert.Empty(t, events[2].Tags)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.Equal(t, id, events[0].SessionID)
}

func TestRecorder_CaptureAIResponseEstimatesCost(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := NewRecorder(store, nil)
	id := uuid.New()

	rec.CaptureAIResponse(ctx, id, types.AIResponseCapture{
		Category: types.CategorySkills,
		Model:    "gemini-2.5-flash",
		Usage:    types.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 0, TotalTokens: 1_000_000},
	})
	rec.CaptureAIResponse(ctx, id, types.AIResponseCapture{Model: "gemini-2.5-flash", CostUSD: 0.5})

	responses, _ := store.ListAIResponses(ctx, id)
	require.Len(t, responses, 2)
	assert.InDelta(t, 0.30, responses[0].CostUSD, 1e-9)
	assert.InDelta(t, 0.5, responses[1].CostUSD, 1e-9)
}

func TestRecorder_LogValidationNeverStoresNilIssues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := NewRecorder(store, nil)
	id := uuid.New()

	rec.LogValidation(ctx, id, "", 0, types.ValidationResult{Passed: true, Confidence: 100})

	logs, _ := store.ListValidationLogs(ctx, id)
	require.Len(t, logs, 1)
	assert.NotNil(t, logs[0].Issues)
	assert.Equal(t, types.Category(""), logs[0].Category)
}

func TestRecorder_SaveCheckpoint(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := NewRecorder(store, nil)
	id := uuid.New()

	rec.SaveCheckpoint(ctx, id, PassPhasePrefix+"skills", PassSnapshot{Category: "skills", Success: true, Confidence: 90})
	rec.SaveCheckpoint(ctx, id, "bad", []string{"not", "an", "object"})

	cps, _ := store.ListCheckpoints(ctx, id)
	require.Len(t, cps, 1)
	assert.Equal(t, "pass:skills", cps[0].Phase)

	var snap PassSnapshot
	require.NoError(t, Decode(cps[0].Snapshot, &snap))
	assert.True(t, snap.Success)
	assert.Equal(t, 90.0, snap.Confidence)
}

func TestRecorder_StoreFailuresAreLoggedNotReturned(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	rec := NewRecorder(failingStore{NewMemoryStore()}, zap.New(core))

	assert.NotPanics(t, func() {
		session := rec.StartSession(ctx, "v", "u", "extraction-v1", nil)
		rec.LogProgress(ctx, session.ID, "passes", "halfway", 50)
		rec.CaptureAIResponse(ctx, session.ID, types.AIResponseCapture{})
		rec.LogValidation(ctx, session.ID, types.CategorySkills, 1, types.ValidationResult{})
		rec.SaveCheckpoint(ctx, session.ID, "structure", map[string]any{"ok": true})
		rec.EndSession(ctx, session, types.SessionCompleted, nil)
	})

	assert.GreaterOrEqual(t, logs.Len(), 7)
	for _, entry := range logs.All() {
		assert.Contains(t, entry.Message, "observability: failed to")
	}
}

func TestRecorder_NilStore(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(nil, nil)

	session := rec.StartSession(ctx, "v", "u", "extraction-v1", nil)
	rec.EndSession(ctx, session, types.SessionFailed, nil)

	_, err := rec.GenerateReport(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestToMap(t *testing.T) {
	m, err := ToMap(nil)
	require.NoError(t, err)
	assert.Empty(t, m)

	m, err = ToMap(struct {
		Name string `json:"name"`
	}{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", m["name"])

	_, err = ToMap(42)
	assert.Error(t, err)
}
