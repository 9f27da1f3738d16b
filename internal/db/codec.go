package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/career-extractor/internal/types"
)

// jsonOrNil encodes v, returning nil for nil maps and empty raw messages so
// the column stays NULL
func jsonOrNil(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if t == nil {
			return nil, nil
		}
	case json.RawMessage:
		if len(t) == 0 {
			return nil, nil
		}
		return []byte(t), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal column: %w", err)
	}
	return b, nil
}

func decodeMap(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal column: %w", err)
	}
	return m, nil
}

func decodeIssues(b []byte) ([]types.ValidationIssue, error) {
	issues := []types.ValidationIssue{}
	if len(b) == 0 {
		return issues, nil
	}
	if err := json.Unmarshal(b, &issues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
	}
	return issues, nil
}

func issuesJSON(issues []types.ValidationIssue) ([]byte, error) {
	if issues == nil {
		issues = []types.ValidationIssue{}
	}
	return json.Marshal(issues)
}

// sqlite stores timestamps as RFC 3339 text
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
