// Package observability records what happens during an extraction session:
// events, raw completion responses, validation runs and checkpoints. It also
// rebuilds a session report from those records and renders CLI output.
package observability

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/career-extractor/internal/types"
)

// ErrSessionNotFound is returned by stores for an unknown session id
var ErrSessionNotFound = errors.New("session not found")

// Store persists session records. Everything except the session row is append-only.
type Store interface {
	CreateSession(ctx context.Context, session *types.ExtractionSession) error
	UpdateSession(ctx context.Context, session *types.ExtractionSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*types.ExtractionSession, error)

	InsertEvent(ctx context.Context, event *types.ExtractionEvent) error
	ListEvents(ctx context.Context, sessionID uuid.UUID) ([]types.ExtractionEvent, error)

	InsertAIResponse(ctx context.Context, capture *types.AIResponseCapture) error
	ListAIResponses(ctx context.Context, sessionID uuid.UUID) ([]types.AIResponseCapture, error)

	InsertValidationLog(ctx context.Context, log *types.ValidationLog) error
	ListValidationLogs(ctx context.Context, sessionID uuid.UUID) ([]types.ValidationLog, error)

	InsertCheckpoint(ctx context.Context, checkpoint *types.Checkpoint) error
	ListCheckpoints(ctx context.Context, sessionID uuid.UUID) ([]types.Checkpoint, error)
}

// DefaultSessionListLimit caps ListSessions when no limit is given
const DefaultSessionListLimit = 50

// SessionLister is implemented by stores that can enumerate sessions
type SessionLister interface {
	// ListSessions returns the most recent sessions for a vault, newest first.
	// Metadata and final results are not populated.
	ListSessions(ctx context.Context, vaultID string, limit int) ([]types.ExtractionSession, error)
}
