// Package pipeline orchestrates an extraction session: pre-extraction
// analysis, one retried pass per category, and the final cross-validation.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-extractor/internal/prompts"
)

// Config describes one extraction request
type Config struct {
	ResumeText string `json:"-" validate:"required"`
	VaultID    string `json:"vault_id" validate:"required,max=128"`
	UserID     string `json:"user_id" validate:"required,max=128"`
	// TargetRole and TargetIndustry override detection when set
	TargetRole     string `json:"target_role,omitempty" validate:"max=120"`
	TargetIndustry string `json:"target_industry,omitempty" validate:"max=120"`
	// Version labels the prompt set; defaults to the embedded prompt version
	Version string `json:"version,omitempty"`
	// MaxConcurrentPasses bounds pass fan-out; 0 or 1 runs passes sequentially
	MaxConcurrentPasses int `json:"max_concurrent_passes" validate:"gte=0,lte=4"`
	// MaxAttempts and MinConfidence override the executor defaults when non-zero
	MaxAttempts   int            `json:"max_attempts,omitempty" validate:"gte=0,lte=10"`
	MinConfidence float64        `json:"min_confidence,omitempty" validate:"gte=0,lte=100"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Validate checks required fields and threshold ranges
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ResumeText) == "" {
		return errors.New("invalid extraction config: resume text is empty")
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid extraction config: %w", err)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Version == "" {
		c.Version = prompts.Version()
	}
	if c.MaxConcurrentPasses < 1 {
		c.MaxConcurrentPasses = 1
	}
	return c
}

// sessionMetadata is stored on the session row
func (c Config) sessionMetadata() map[string]any {
	m := map[string]any{
		"resume_chars":          len(c.ResumeText),
		"max_concurrent_passes": c.MaxConcurrentPasses,
	}
	if c.TargetRole != "" {
		m["target_role"] = c.TargetRole
	}
	if c.TargetIndustry != "" {
		m["target_industry"] = c.TargetIndustry
	}
	for k, v := range c.Metadata {
		m[k] = v
	}
	return m
}
