// Package db provides PostgreSQL and SQLite implementations of the
// extraction session store.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/types"
)

//go:embed schema/postgres.sql
var postgresSchema string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var (
	_ observability.Store         = (*DB)(nil)
	_ observability.SessionLister = (*DB)(nil)
)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the session tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateSession inserts a new session row
func (db *DB) CreateSession(ctx context.Context, s *types.ExtractionSession) error {
	metadata, err := jsonOrNil(s.Metadata)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO extraction_sessions (id, vault_id, user_id, version, status, started_at, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.VaultID, s.UserID, s.Version, string(s.Status), s.StartedAt, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// UpdateSession writes the status, end time and final result of a session
func (db *DB) UpdateSession(ctx context.Context, s *types.ExtractionSession) error {
	final, err := jsonOrNil(s.FinalResult)
	if err != nil {
		return err
	}
	result, err := db.pool.Exec(ctx,
		`UPDATE extraction_sessions SET status = $1, ended_at = $2, final_result = $3 WHERE id = $4`,
		string(s.Status), s.EndedAt, final, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return observability.ErrSessionNotFound
	}
	return nil
}

// GetSession retrieves a session by ID
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*types.ExtractionSession, error) {
	var s types.ExtractionSession
	var status string
	var metadata, final []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, vault_id, user_id, version, status, started_at, ended_at, metadata, final_result
		 FROM extraction_sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.VaultID, &s.UserID, &s.Version, &status, &s.StartedAt, &s.EndedAt, &metadata, &final)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, observability.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.Status = types.SessionStatus(status)
	if s.Metadata, err = decodeMap(metadata); err != nil {
		return nil, err
	}
	if s.FinalResult, err = decodeMap(final); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions implements observability.SessionLister
func (db *DB) ListSessions(ctx context.Context, vaultID string, limit int) ([]types.ExtractionSession, error) {
	if limit <= 0 {
		limit = observability.DefaultSessionListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, vault_id, user_id, version, status, started_at, ended_at
		 FROM extraction_sessions WHERE vault_id = $1 ORDER BY started_at DESC LIMIT $2`,
		vaultID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []types.ExtractionSession
	for rows.Next() {
		var s types.ExtractionSession
		var status string
		if err := rows.Scan(&s.ID, &s.VaultID, &s.UserID, &s.Version, &status, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Status = types.SessionStatus(status)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// InsertEvent appends an event
func (db *DB) InsertEvent(ctx context.Context, e *types.ExtractionEvent) error {
	data, err := jsonOrNil(e.Data)
	if err != nil {
		return err
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO extraction_events (id, session_id, event_type, phase, category, message, tags, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.SessionID, e.EventType, e.Phase, string(e.Category), e.Message, tags, data, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %s: %w", e.EventType, err)
	}
	return nil
}

// ListEvents returns a session's events in insertion order
func (db *DB) ListEvents(ctx context.Context, sessionID uuid.UUID) ([]types.ExtractionEvent, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, event_type, phase, category, message, tags, data, created_at
		 FROM extraction_events WHERE session_id = $1 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []types.ExtractionEvent
	for rows.Next() {
		var e types.ExtractionEvent
		var category string
		var data []byte
		if err := rows.Scan(&e.ID, &e.SessionID, &e.EventType, &e.Phase, &category, &e.Message, &e.Tags, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Category = types.Category(category)
		if e.Data, err = decodeMap(data); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// InsertAIResponse appends a captured completion response
func (db *DB) InsertAIResponse(ctx context.Context, c *types.AIResponseCapture) error {
	parsed, err := jsonOrNil(c.ParsedResponse)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO ai_response_captures (id, session_id, category, attempt, strategy, model, prompt_version,
		     raw_response, parsed_response, reasoning, prompt_tokens, completion_tokens, total_tokens,
		     cost_usd, latency_ms, confidence, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		c.ID, c.SessionID, string(c.Category), c.Attempt, c.Strategy, c.Model, c.PromptVersion,
		c.RawResponse, parsed, c.Reasoning, c.Usage.PromptTokens, c.Usage.CompletionTokens, c.Usage.TotalTokens,
		c.CostUSD, c.LatencyMs, c.Confidence, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ai response: %w", err)
	}
	return nil
}

// ListAIResponses returns a session's captured responses in insertion order
func (db *DB) ListAIResponses(ctx context.Context, sessionID uuid.UUID) ([]types.AIResponseCapture, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, category, attempt, strategy, model, prompt_version, raw_response,
		        parsed_response, reasoning, prompt_tokens, completion_tokens, total_tokens,
		        cost_usd, latency_ms, confidence, created_at
		 FROM ai_response_captures WHERE session_id = $1 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ai responses: %w", err)
	}
	defer rows.Close()

	var out []types.AIResponseCapture
	for rows.Next() {
		var c types.AIResponseCapture
		var category string
		var parsed []byte
		if err := rows.Scan(&c.ID, &c.SessionID, &category, &c.Attempt, &c.Strategy, &c.Model, &c.PromptVersion,
			&c.RawResponse, &parsed, &c.Reasoning, &c.Usage.PromptTokens, &c.Usage.CompletionTokens,
			&c.Usage.TotalTokens, &c.CostUSD, &c.LatencyMs, &c.Confidence, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ai response: %w", err)
		}
		c.Category = types.Category(category)
		if len(parsed) > 0 {
			c.ParsedResponse = parsed
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertValidationLog appends a validation run
func (db *DB) InsertValidationLog(ctx context.Context, l *types.ValidationLog) error {
	issues, err := issuesJSON(l.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO validation_logs (id, session_id, category, attempt, passed, confidence, issues, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.SessionID, string(l.Category), l.Attempt, l.Passed, l.Confidence, issues, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert validation log: %w", err)
	}
	return nil
}

// ListValidationLogs returns a session's validation runs in insertion order
func (db *DB) ListValidationLogs(ctx context.Context, sessionID uuid.UUID) ([]types.ValidationLog, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, category, attempt, passed, confidence, issues, created_at
		 FROM validation_logs WHERE session_id = $1 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation logs: %w", err)
	}
	defer rows.Close()

	var out []types.ValidationLog
	for rows.Next() {
		var l types.ValidationLog
		var category string
		var issues []byte
		if err := rows.Scan(&l.ID, &l.SessionID, &category, &l.Attempt, &l.Passed, &l.Confidence, &issues, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan validation log: %w", err)
		}
		l.Category = types.Category(category)
		if l.Issues, err = decodeIssues(issues); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// InsertCheckpoint appends a checkpoint
func (db *DB) InsertCheckpoint(ctx context.Context, cp *types.Checkpoint) error {
	snapshot, err := jsonOrNil(cp.Snapshot)
	if err != nil {
		return err
	}
	if snapshot == nil {
		snapshot = []byte("{}")
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO extraction_checkpoints (id, session_id, phase, snapshot, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		cp.ID, cp.SessionID, cp.Phase, snapshot, cp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert checkpoint %s: %w", cp.Phase, err)
	}
	return nil
}

// ListCheckpoints returns a session's checkpoints in insertion order
func (db *DB) ListCheckpoints(ctx context.Context, sessionID uuid.UUID) ([]types.Checkpoint, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, phase, snapshot, created_at
		 FROM extraction_checkpoints WHERE session_id = $1 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []types.Checkpoint
	for rows.Next() {
		var cp types.Checkpoint
		var snapshot []byte
		if err := rows.Scan(&cp.ID, &cp.SessionID, &cp.Phase, &snapshot, &cp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		if cp.Snapshot, err = decodeMap(snapshot); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// DeleteSessionsBefore removes sessions started before cutoff; their records cascade
func (db *DB) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM extraction_sessions WHERE started_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
