package db

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/types"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

// SQLiteDB is a single-file session store for local runs
type SQLiteDB struct {
	db *sql.DB
}

var (
	_ observability.Store         = (*SQLiteDB)(nil)
	_ observability.SessionLister = (*SQLiteDB)(nil)
)

// OpenSQLite opens (or creates) the database at path and ensures its schema
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1) // single writer

	s := &SQLiteDB{db: conn}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the session tables if they do not exist
func (s *SQLiteDB) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateSession inserts a new session row
func (s *SQLiteDB) CreateSession(ctx context.Context, session *types.ExtractionSession) error {
	metadata, err := jsonOrNil(session.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extraction_sessions (id, vault_id, user_id, version, status, started_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID.String(), session.VaultID, session.UserID, session.Version, string(session.Status),
		formatTime(session.StartedAt), nullableText(metadata),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// UpdateSession writes the status, end time and final result of a session
func (s *SQLiteDB) UpdateSession(ctx context.Context, session *types.ExtractionSession) error {
	final, err := jsonOrNil(session.FinalResult)
	if err != nil {
		return err
	}
	var ended sql.NullString
	if session.EndedAt != nil {
		ended = sql.NullString{String: formatTime(*session.EndedAt), Valid: true}
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE extraction_sessions SET status = ?, ended_at = ?, final_result = ? WHERE id = ?`,
		string(session.Status), ended, nullableText(final), session.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return observability.ErrSessionNotFound
	}
	return nil
}

// GetSession retrieves a session by ID
func (s *SQLiteDB) GetSession(ctx context.Context, id uuid.UUID) (*types.ExtractionSession, error) {
	var (
		session         types.ExtractionSession
		rawID, status   string
		started         string
		ended           sql.NullString
		metadata, final sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, vault_id, user_id, version, status, started_at, ended_at, metadata, final_result
		 FROM extraction_sessions WHERE id = ?`,
		id.String(),
	).Scan(&rawID, &session.VaultID, &session.UserID, &session.Version, &status, &started, &ended, &metadata, &final)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, observability.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("failed to parse session id: %w", err)
	}
	session.Status = types.SessionStatus(status)
	if session.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if ended.Valid {
		t, err := parseTime(ended.String)
		if err != nil {
			return nil, err
		}
		session.EndedAt = &t
	}
	if session.Metadata, err = decodeMap([]byte(metadata.String)); err != nil {
		return nil, err
	}
	if session.FinalResult, err = decodeMap([]byte(final.String)); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions implements observability.SessionLister
func (s *SQLiteDB) ListSessions(ctx context.Context, vaultID string, limit int) ([]types.ExtractionSession, error) {
	if limit <= 0 {
		limit = observability.DefaultSessionListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vault_id, user_id, version, status, started_at, ended_at
		 FROM extraction_sessions WHERE vault_id = ? ORDER BY started_at DESC LIMIT ?`,
		vaultID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []types.ExtractionSession
	for rows.Next() {
		var (
			session       types.ExtractionSession
			rawID, status string
			started       string
			ended         sql.NullString
		)
		if err := rows.Scan(&rawID, &session.VaultID, &session.UserID, &session.Version, &status, &started, &ended); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if session.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("failed to parse session id: %w", err)
		}
		session.Status = types.SessionStatus(status)
		if session.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if ended.Valid {
			t, err := parseTime(ended.String)
			if err != nil {
				return nil, err
			}
			session.EndedAt = &t
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// InsertEvent appends an event
func (s *SQLiteDB) InsertEvent(ctx context.Context, e *types.ExtractionEvent) error {
	data, err := jsonOrNil(e.Data)
	if err != nil {
		return err
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extraction_events (id, session_id, event_type, phase, category, message, tags, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.SessionID.String(), e.EventType, e.Phase, string(e.Category), e.Message,
		string(tagsJSON), nullableText(data), formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %s: %w", e.EventType, err)
	}
	return nil
}

// ListEvents returns a session's events in insertion order
func (s *SQLiteDB) ListEvents(ctx context.Context, sessionID uuid.UUID) ([]types.ExtractionEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_type, phase, category, message, tags, data, created_at
		 FROM extraction_events WHERE session_id = ? ORDER BY seq`,
		sessionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []types.ExtractionEvent
	for rows.Next() {
		var (
			e                     types.ExtractionEvent
			rawID, category, tags string
			created               string
			data                  sql.NullString
		)
		if err := rows.Scan(&rawID, &e.EventType, &e.Phase, &category, &e.Message, &tags, &data, &created); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("failed to parse event id: %w", err)
		}
		e.SessionID = sessionID
		e.Category = types.Category(category)
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
		if e.Data, err = decodeMap([]byte(data.String)); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// InsertAIResponse appends a captured completion response
func (s *SQLiteDB) InsertAIResponse(ctx context.Context, c *types.AIResponseCapture) error {
	parsed, err := jsonOrNil(c.ParsedResponse)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ai_response_captures (id, session_id, category, attempt, strategy, model, prompt_version,
		     raw_response, parsed_response, reasoning, prompt_tokens, completion_tokens, total_tokens,
		     cost_usd, latency_ms, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.SessionID.String(), string(c.Category), c.Attempt, c.Strategy, c.Model, c.PromptVersion,
		c.RawResponse, nullableText(parsed), c.Reasoning, c.Usage.PromptTokens, c.Usage.CompletionTokens,
		c.Usage.TotalTokens, c.CostUSD, c.LatencyMs, c.Confidence, formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ai response: %w", err)
	}
	return nil
}

// ListAIResponses returns a session's captured responses in insertion order
func (s *SQLiteDB) ListAIResponses(ctx context.Context, sessionID uuid.UUID) ([]types.AIResponseCapture, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, attempt, strategy, model, prompt_version, raw_response, parsed_response,
		        reasoning, prompt_tokens, completion_tokens, total_tokens, cost_usd, latency_ms,
		        confidence, created_at
		 FROM ai_response_captures WHERE session_id = ? ORDER BY seq`,
		sessionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ai responses: %w", err)
	}
	defer rows.Close()

	var out []types.AIResponseCapture
	for rows.Next() {
		var (
			c               types.AIResponseCapture
			rawID, category string
			created         string
			parsed          sql.NullString
		)
		if err := rows.Scan(&rawID, &category, &c.Attempt, &c.Strategy, &c.Model, &c.PromptVersion,
			&c.RawResponse, &parsed, &c.Reasoning, &c.Usage.PromptTokens, &c.Usage.CompletionTokens,
			&c.Usage.TotalTokens, &c.CostUSD, &c.LatencyMs, &c.Confidence, &created); err != nil {
			return nil, fmt.Errorf("failed to scan ai response: %w", err)
		}
		if c.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("failed to parse response id: %w", err)
		}
		c.SessionID = sessionID
		c.Category = types.Category(category)
		if parsed.Valid && parsed.String != "" {
			c.ParsedResponse = json.RawMessage(parsed.String)
		}
		if c.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertValidationLog appends a validation run
func (s *SQLiteDB) InsertValidationLog(ctx context.Context, l *types.ValidationLog) error {
	issues, err := issuesJSON(l.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validation_logs (id, session_id, category, attempt, passed, confidence, issues, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.SessionID.String(), string(l.Category), l.Attempt, l.Passed, l.Confidence,
		string(issues), formatTime(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert validation log: %w", err)
	}
	return nil
}

// ListValidationLogs returns a session's validation runs in insertion order
func (s *SQLiteDB) ListValidationLogs(ctx context.Context, sessionID uuid.UUID) ([]types.ValidationLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, attempt, passed, confidence, issues, created_at
		 FROM validation_logs WHERE session_id = ? ORDER BY seq`,
		sessionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation logs: %w", err)
	}
	defer rows.Close()

	var out []types.ValidationLog
	for rows.Next() {
		var (
			l                       types.ValidationLog
			rawID, category, issues string
			created                 string
		)
		if err := rows.Scan(&rawID, &category, &l.Attempt, &l.Passed, &l.Confidence, &issues, &created); err != nil {
			return nil, fmt.Errorf("failed to scan validation log: %w", err)
		}
		if l.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("failed to parse validation log id: %w", err)
		}
		l.SessionID = sessionID
		l.Category = types.Category(category)
		if l.Issues, err = decodeIssues([]byte(issues)); err != nil {
			return nil, err
		}
		if l.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// InsertCheckpoint appends a checkpoint
func (s *SQLiteDB) InsertCheckpoint(ctx context.Context, cp *types.Checkpoint) error {
	snapshot, err := jsonOrNil(cp.Snapshot)
	if err != nil {
		return err
	}
	if snapshot == nil {
		snapshot = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extraction_checkpoints (id, session_id, phase, snapshot, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		cp.ID.String(), cp.SessionID.String(), cp.Phase, string(snapshot), formatTime(cp.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert checkpoint %s: %w", cp.Phase, err)
	}
	return nil
}

// ListCheckpoints returns a session's checkpoints in insertion order
func (s *SQLiteDB) ListCheckpoints(ctx context.Context, sessionID uuid.UUID) ([]types.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phase, snapshot, created_at
		 FROM extraction_checkpoints WHERE session_id = ? ORDER BY seq`,
		sessionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []types.Checkpoint
	for rows.Next() {
		var cp types.Checkpoint
		var rawID, snapshot, created string
		if err := rows.Scan(&rawID, &cp.Phase, &snapshot, &created); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		if cp.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("failed to parse checkpoint id: %w", err)
		}
		cp.SessionID = sessionID
		if cp.Snapshot, err = decodeMap([]byte(snapshot)); err != nil {
			return nil, err
		}
		if cp.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func nullableText(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
