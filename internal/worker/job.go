// Package worker consumes queued extraction jobs from RabbitMQ and runs them
// through the pipeline.
package worker

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Job is one queued extraction request. Exactly one of ResumeText and
// ResumeKey is set; ResumeKey names a plain-text object in the bucket.
type Job struct {
	JobID          string         `json:"job_id" validate:"required,max=128"`
	VaultID        string         `json:"vault_id" validate:"required,max=128"`
	UserID         string         `json:"user_id" validate:"required,max=128"`
	ResumeText     string         `json:"resume_text,omitempty" validate:"required_without=ResumeKey,excluded_with=ResumeKey"`
	ResumeKey      string         `json:"resume_key,omitempty" validate:"required_without=ResumeText,max=1024"`
	TargetRole     string         `json:"target_role,omitempty" validate:"max=120"`
	TargetIndustry string         `json:"target_industry,omitempty" validate:"max=120"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Validate checks required fields
func (j *Job) Validate() error {
	if err := validator.New().Struct(j); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}
	return nil
}

// Status is the lifecycle of a job as published to listeners
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// StatusUpdate is published on every job state change
type StatusUpdate struct {
	JobID      string     `json:"job_id"`
	SessionID  *uuid.UUID `json:"session_id,omitempty"`
	Status     Status     `json:"status"`
	Message    string     `json:"message"`
	Confidence float64    `json:"confidence,omitempty"`
	ItemCount  int        `json:"item_count,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
