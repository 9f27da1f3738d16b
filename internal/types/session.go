package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of an extraction session
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// ExtractionSession is one orchestration run for a vault/user pair
type ExtractionSession struct {
	ID          uuid.UUID      `json:"id"`
	VaultID     string         `json:"vault_id"`
	UserID      string         `json:"user_id"`
	Version     string         `json:"version"`
	Status      SessionStatus  `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	EndedAt     *time.Time     `json:"ended_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	FinalResult map[string]any `json:"final_result,omitempty"`
}

// Event types recorded during a session
const (
	EventSessionStarted  = "session_started"
	EventPhaseStarted    = "phase_started"
	EventPhaseCompleted  = "phase_completed"
	EventProgress        = "progress"
	EventPassStarted     = "pass_started"
	EventPassCompleted   = "pass_completed"
	EventPassSkipped     = "pass_skipped"
	EventRetryAttempt    = "retry_attempt"
	EventStrategyApplied = "strategy_applied"
	EventError           = "error"
	EventSafetyWarning   = "safety_warning"
	EventSessionEnded    = "session_ended"
)

// TagRetry marks events produced by retry or recovery activity
const TagRetry = "retry"

// ExtractionEvent is an append-only structured log entry
type ExtractionEvent struct {
	ID        uuid.UUID      `json:"id"`
	SessionID uuid.UUID      `json:"session_id"`
	EventType string         `json:"event_type"`
	Phase     string         `json:"phase,omitempty"`
	Category  Category       `json:"category,omitempty"`
	Message   string         `json:"message"`
	Tags      []string       `json:"tags,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// HasTag reports whether the event carries tag
func (e *ExtractionEvent) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TokenUsage counts tokens consumed by one completion call
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AIResponseCapture stores one raw completion response alongside its parsed form
type AIResponseCapture struct {
	ID             uuid.UUID       `json:"id"`
	SessionID      uuid.UUID       `json:"session_id"`
	Category       Category        `json:"category"`
	Attempt        int             `json:"attempt"`
	Strategy       string          `json:"strategy"`
	Model          string          `json:"model"`
	PromptVersion  string          `json:"prompt_version"`
	RawResponse    string          `json:"raw_response"`
	ParsedResponse json.RawMessage `json:"parsed_response,omitempty"`
	Reasoning      string          `json:"reasoning,omitempty"`
	Usage          TokenUsage      `json:"usage"`
	CostUSD        float64         `json:"cost_usd"`
	LatencyMs      int64           `json:"latency_ms"`
	Confidence     float64         `json:"confidence"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ValidationLog records one validation run
type ValidationLog struct {
	ID         uuid.UUID         `json:"id"`
	SessionID  uuid.UUID         `json:"session_id"`
	Category   Category          `json:"category,omitempty"`
	Attempt    int               `json:"attempt"`
	Passed     bool              `json:"passed"`
	Confidence float64           `json:"confidence"`
	Issues     []ValidationIssue `json:"issues"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Checkpoint is a named snapshot of pipeline state
type Checkpoint struct {
	ID        uuid.UUID      `json:"id"`
	SessionID uuid.UUID      `json:"session_id"`
	Phase     string         `json:"phase"`
	Snapshot  map[string]any `json:"snapshot"`
	CreatedAt time.Time      `json:"created_at"`
}

// SessionReport is reconstructed from everything recorded for a session
type SessionReport struct {
	SessionID             uuid.UUID     `json:"session_id"`
	Status                SessionStatus `json:"status"`
	DurationMs            int64         `json:"duration_ms"`
	TotalTokens           int           `json:"total_tokens"`
	PromptTokens          int           `json:"prompt_tokens"`
	CompletionTokens      int           `json:"completion_tokens"`
	TotalCostUSD          float64       `json:"total_cost_usd"`
	ResponseCount         int           `json:"response_count"`
	AverageLatencyMs      float64       `json:"average_latency_ms"`
	RetryCount            int           `json:"retry_count"`
	AverageConfidence     float64       `json:"average_confidence"`
	ModelsUsed            []string      `json:"models_used"`
	PromptVersions        []string      `json:"prompt_versions"`
	CriticalIssues        int           `json:"critical_issues"`
	LowConfidencePasses   int           `json:"low_confidence_passes"`
	CheckpointPhases      []string      `json:"checkpoint_phases"`
	EventCount            int           `json:"event_count"`
	Recommendations       []string      `json:"recommendations"`
	FinalValidationPassed *bool         `json:"final_validation_passed,omitempty"`
}
