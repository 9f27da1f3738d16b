package db

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/types"
)

// testStoreContract runs the same round trip against any Store implementation
func testStoreContract(t *testing.T, store observability.Store) {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	session := &types.ExtractionSession{
		ID:        uuid.New(),
		VaultID:   "vault-" + uuid.NewString(),
		UserID:    "user-1",
		Version:   "extraction-v1",
		Status:    types.SessionRunning,
		StartedAt: start,
		Metadata:  map[string]any{"source": "test"},
	}
	require.NoError(t, store.CreateSession(ctx, session))

	t.Run("get session", func(t *testing.T) {
		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.VaultID, got.VaultID)
		assert.Equal(t, types.SessionRunning, got.Status)
		assert.True(t, start.Equal(got.StartedAt))
		assert.Nil(t, got.EndedAt)
		assert.Equal(t, "test", got.Metadata["source"])
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := store.GetSession(ctx, uuid.New())
		assert.ErrorIs(t, err, observability.ErrSessionNotFound)
		err = store.UpdateSession(ctx, &types.ExtractionSession{ID: uuid.New(), Status: types.SessionFailed})
		assert.ErrorIs(t, err, observability.ErrSessionNotFound)
	})

	t.Run("events keep insertion order", func(t *testing.T) {
		for i, eventType := range []string{types.EventSessionStarted, types.EventRetryAttempt, types.EventPassCompleted} {
			e := &types.ExtractionEvent{
				ID:        uuid.New(),
				SessionID: session.ID,
				EventType: eventType,
				Category:  types.CategorySkills,
				Message:   "event",
				CreatedAt: start.Add(time.Duration(i) * time.Second),
			}
			if eventType == types.EventRetryAttempt {
				e.Tags = []string{types.TagRetry}
				e.Data = map[string]any{"attempt": 2}
			}
			require.NoError(t, store.InsertEvent(ctx, e))
		}

		events, err := store.ListEvents(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, types.EventSessionStarted, events[0].EventType)
		assert.True(t, events[1].HasTag(types.TagRetry))
		assert.EqualValues(t, 2, events[1].Data["attempt"])
		assert.Equal(t, types.CategorySkills, events[2].Category)
		assert.Equal(t, session.ID, events[2].SessionID)
	})

	t.Run("ai responses", func(t *testing.T) {
		capture := &types.AIResponseCapture{
			ID:             uuid.New(),
			SessionID:      session.ID,
			Category:       types.CategoryPowerPhrases,
			Attempt:        2,
			Strategy:       "enhanced_prompt",
			Model:          "gemini-2.5-flash",
			PromptVersion:  "extraction-v1",
			RawResponse:    `{"power_phrases":[]}`,
			ParsedResponse: json.RawMessage(`{"power_phrases":[]}`),
			Usage:          types.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
			CostUSD:        0.0001,
			LatencyMs:      250,
			Confidence:     82.5,
			CreatedAt:      start,
		}
		require.NoError(t, store.InsertAIResponse(ctx, capture))

		got, err := store.ListAIResponses(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, capture.ID, got[0].ID)
		assert.Equal(t, 2, got[0].Attempt)
		assert.Equal(t, "enhanced_prompt", got[0].Strategy)
		assert.Equal(t, 15, got[0].Usage.TotalTokens)
		assert.Equal(t, int64(250), got[0].LatencyMs)
		assert.InDelta(t, 82.5, got[0].Confidence, 1e-9)
		assert.JSONEq(t, `{"power_phrases":[]}`, string(got[0].ParsedResponse))
	})

	t.Run("validation logs", func(t *testing.T) {
		require.NoError(t, store.InsertValidationLog(ctx, &types.ValidationLog{
			ID: uuid.New(), SessionID: session.ID, Category: types.CategorySkills, Attempt: 1,
			Confidence: 60, CreatedAt: start,
			Issues: []types.ValidationIssue{{Rule: "completeness", Severity: types.SeverityCritical, Message: "too few"}},
		}))
		require.NoError(t, store.InsertValidationLog(ctx, &types.ValidationLog{
			ID: uuid.New(), SessionID: session.ID, Passed: true, Confidence: 90, CreatedAt: start.Add(time.Second),
		}))

		logs, err := store.ListValidationLogs(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.False(t, logs[0].Passed)
		require.Len(t, logs[0].Issues, 1)
		assert.Equal(t, types.SeverityCritical, logs[0].Issues[0].Severity)
		assert.True(t, logs[1].Passed)
		assert.Equal(t, types.Category(""), logs[1].Category)
		assert.NotNil(t, logs[1].Issues)
	})

	t.Run("checkpoints", func(t *testing.T) {
		require.NoError(t, store.InsertCheckpoint(ctx, &types.Checkpoint{
			ID: uuid.New(), SessionID: session.ID, Phase: "structure",
			Snapshot: map[string]any{"sections": 4}, CreatedAt: start,
		}))
		require.NoError(t, store.InsertCheckpoint(ctx, &types.Checkpoint{
			ID: uuid.New(), SessionID: session.ID, Phase: "pass:skills", CreatedAt: start.Add(time.Second),
		}))

		cps, err := store.ListCheckpoints(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, cps, 2)
		assert.Equal(t, "structure", cps[0].Phase)
		assert.EqualValues(t, 4, cps[0].Snapshot["sections"])
		assert.Empty(t, cps[1].Snapshot)
	})

	t.Run("end session", func(t *testing.T) {
		ended := start.Add(5 * time.Second)
		session.Status = types.SessionCompleted
		session.EndedAt = &ended
		session.FinalResult = map[string]any{"success": true}
		require.NoError(t, store.UpdateSession(ctx, session))

		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, types.SessionCompleted, got.Status)
		require.NotNil(t, got.EndedAt)
		assert.True(t, ended.Equal(*got.EndedAt))
		assert.Equal(t, true, got.FinalResult["success"])
	})

	t.Run("report reads the store", func(t *testing.T) {
		report, err := observability.GenerateReport(ctx, store, session.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), report.DurationMs)
		assert.Equal(t, 1, report.RetryCount)
		assert.Equal(t, 1, report.ResponseCount)
		assert.Equal(t, []string{"structure", "pass:skills"}, report.CheckpointPhases)
	})
	lister, ok := store.(observability.SessionLister)
	if !ok {
		return
	}
	t.Run("list sessions newest first", func(t *testing.T) {
		later := &types.ExtractionSession{
			ID:        uuid.New(),
			VaultID:   session.VaultID,
			UserID:    "user-2",
			Version:   "extraction-v1",
			Status:    types.SessionRunning,
			StartedAt: start.Add(time.Hour),
		}
		require.NoError(t, store.CreateSession(ctx, later))

		sessions, err := lister.ListSessions(ctx, session.VaultID, 0)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, later.ID, sessions[0].ID)
		assert.Equal(t, session.ID, sessions[1].ID)
		assert.Equal(t, types.SessionCompleted, sessions[1].Status)
		assert.NotNil(t, sessions[1].EndedAt)

		limited, err := lister.ListSessions(ctx, session.VaultID, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		none, err := lister.ListSessions(ctx, "vault-"+uuid.NewString(), 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
