package observability

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/career-extractor/internal/types"
)

// MemoryStore is an in-process Store for tests and single-run CLI use
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]types.ExtractionSession
	events      map[uuid.UUID][]types.ExtractionEvent
	responses   map[uuid.UUID][]types.AIResponseCapture
	validations map[uuid.UUID][]types.ValidationLog
	checkpoints map[uuid.UUID][]types.Checkpoint
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[uuid.UUID]types.ExtractionSession),
		events:      make(map[uuid.UUID][]types.ExtractionEvent),
		responses:   make(map[uuid.UUID][]types.AIResponseCapture),
		validations: make(map[uuid.UUID][]types.ValidationLog),
		checkpoints: make(map[uuid.UUID][]types.Checkpoint),
	}
}

// CreateSession implements Store
func (m *MemoryStore) CreateSession(_ context.Context, session *types.ExtractionSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	return nil
}

// UpdateSession implements Store
func (m *MemoryStore) UpdateSession(_ context.Context, session *types.ExtractionSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	m.sessions[session.ID] = *session
	return nil
}

// GetSession implements Store
func (m *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*types.ExtractionSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// ListSessions implements SessionLister
func (m *MemoryStore) ListSessions(_ context.Context, vaultID string, limit int) ([]types.ExtractionSession, error) {
	if limit <= 0 {
		limit = DefaultSessionListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.ExtractionSession
	for _, s := range m.sessions {
		if s.VaultID != vaultID {
			continue
		}
		s.Metadata, s.FinalResult = nil, nil
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InsertEvent implements Store
func (m *MemoryStore) InsertEvent(_ context.Context, event *types.ExtractionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.SessionID] = append(m.events[event.SessionID], *event)
	return nil
}

// ListEvents implements Store
func (m *MemoryStore) ListEvents(_ context.Context, sessionID uuid.UUID) ([]types.ExtractionEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.ExtractionEvent(nil), m.events[sessionID]...), nil
}

// InsertAIResponse implements Store
func (m *MemoryStore) InsertAIResponse(_ context.Context, capture *types.AIResponseCapture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[capture.SessionID] = append(m.responses[capture.SessionID], *capture)
	return nil
}

// ListAIResponses implements Store
func (m *MemoryStore) ListAIResponses(_ context.Context, sessionID uuid.UUID) ([]types.AIResponseCapture, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.AIResponseCapture(nil), m.responses[sessionID]...), nil
}

// InsertValidationLog implements Store
func (m *MemoryStore) InsertValidationLog(_ context.Context, log *types.ValidationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := *log
	if entry.Issues == nil {
		entry.Issues = []types.ValidationIssue{}
	}
	m.validations[log.SessionID] = append(m.validations[log.SessionID], entry)
	return nil
}

// ListValidationLogs implements Store
func (m *MemoryStore) ListValidationLogs(_ context.Context, sessionID uuid.UUID) ([]types.ValidationLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.ValidationLog(nil), m.validations[sessionID]...), nil
}

// InsertCheckpoint implements Store
func (m *MemoryStore) InsertCheckpoint(_ context.Context, checkpoint *types.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[checkpoint.SessionID] = append(m.checkpoints[checkpoint.SessionID], *checkpoint)
	return nil
}

// ListCheckpoints implements Store
func (m *MemoryStore) ListCheckpoints(_ context.Context, sessionID uuid.UUID) ([]types.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Checkpoint(nil), m.checkpoints[sessionID]...), nil
}
